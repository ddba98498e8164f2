package render

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

func testMap() *domain.ProcessedMap {
	c := func(lat, lon, elev float64) domain.Coordinate {
		return domain.Coordinate{Lat: lat, Lon: lon, Elevation: elev}
	}
	return &domain.ProcessedMap{
		SurveyID: "survey_001",
		Coordinates: []domain.Coordinate{
			c(43.00, -2.00, 100),
			c(43.01, -2.01, 180),
			c(43.02, -2.02, 160),
		},
		Units: []domain.GeologicalUnit{
			{
				Type:        "Granite",
				Coordinates: []domain.Coordinate{c(43.00, -2.00, 100)},
				Properties:  domain.UnitProperties{Classification: domain.KindRock},
			},
			{
				Type:        "Basalt",
				Coordinates: []domain.Coordinate{c(43.01, -2.01, 180), c(43.02, -2.02, 160)},
				Properties:  domain.UnitProperties{Classification: domain.KindRock},
			},
			{
				Type: "Limestone",
				Coordinates: []domain.Coordinate{
					c(43.00, -2.02, 90), c(43.005, -2.025, 95), c(43.01, -2.015, 92),
				},
				Properties: domain.UnitProperties{Classification: domain.KindRock},
			},
		},
		Boundaries: []domain.Boundary{
			{
				Type:    "contact",
				Between: [2]string{"Granite", "Basalt"},
				Coordinates: []domain.Coordinate{
					c(43.00, -2.00, 100), c(43.0025, -2.0025, 120),
					c(43.005, -2.005, 140), c(43.0075, -2.0075, 160),
					c(43.01, -2.01, 180),
				},
			},
		},
		StructuralFeatures: []domain.StructuralFeature{
			{
				Type:         "fault",
				Coordinates:  []domain.Coordinate{c(43.00, -2.00, 100), c(43.01, -2.01, 180)},
				Displacement: 80,
			},
		},
	}
}

func TestRender_WritesDecodablePNG(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := r.Render(context.Background(), testMap(), "survey_001")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if filepath.Base(path) != "geological_map_survey_001.png" {
		t.Errorf("artifact name = %q", filepath.Base(path))
	}
	if filepath.Dir(path) != dir {
		t.Errorf("artifact outside output dir: %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("artifact is not a PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 1400 || b.Dy() != 1000 {
		t.Errorf("canvas = %dx%d, want 1400x1000", b.Dx(), b.Dy())
	}
}

func TestRender_NoCoordinates(t *testing.T) {
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.Render(context.Background(), &domain.ProcessedMap{SurveyID: "survey_009"}, "survey_009")
	if err == nil {
		t.Fatal("expected error for a map with no coordinates")
	}
	if !strings.Contains(err.Error(), "no coordinates") {
		t.Errorf("err = %v", err)
	}
}

func TestRender_SparseGeometries(t *testing.T) {
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Single-point traverse, one-vertex unit, no boundaries or faults.
	m := &domain.ProcessedMap{
		SurveyID:    "survey_002",
		Coordinates: []domain.Coordinate{{Lat: 0, Lon: 0, Elevation: 0}},
		Units: []domain.GeologicalUnit{
			{Type: "Quartz", Coordinates: []domain.Coordinate{{Lat: 0, Lon: 0}}},
		},
	}
	if _, err := r.Render(context.Background(), m, "survey_002"); err != nil {
		t.Errorf("single-point map failed to render: %v", err)
	}

	// Two-vertex unit renders as a line segment.
	m = &domain.ProcessedMap{
		SurveyID:    "survey_003",
		Coordinates: []domain.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}},
		Units: []domain.GeologicalUnit{
			{Type: "Mystery", Coordinates: []domain.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}},
		},
	}
	if _, err := r.Render(context.Background(), m, "survey_003"); err != nil {
		t.Errorf("two-vertex unit failed to render: %v", err)
	}
}

func TestColorForType(t *testing.T) {
	if colorForType("GRANITE") != unitColors["granite"] {
		t.Error("lookup is not case-insensitive")
	}
	if colorForType("kryptonite") != unitColors["unknown"] {
		t.Error("unknown type did not fall back to the unknown color")
	}
}
