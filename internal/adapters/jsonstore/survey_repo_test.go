package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

func TestSurveyRepo_CreateAssignsSequentialIDs(t *testing.T) {
	repo, err := NewSurveyRepo(t.TempDir())
	if err != nil {
		t.Fatalf("NewSurveyRepo: %v", err)
	}
	ctx := context.Background()

	for i, want := range []string{"survey_001", "survey_002", "survey_003"} {
		s := &domain.Survey{Coordinates: []domain.Coordinate{{Lat: float64(i), Lon: 0, Elevation: 0}}}
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if s.ID != want {
			t.Errorf("ID = %q, want %q", s.ID, want)
		}
	}
}

func TestSurveyRepo_IDSeedsFromHighestPersisted(t *testing.T) {
	dir := t.TempDir()
	seed := surveyFile{Surveys: []domain.Survey{
		{ID: "survey_002"},
		{ID: "survey_007"},
		{ID: "not_a_survey_id"},
	}}
	writeSurveyFile(t, dir, seed)

	repo, err := NewSurveyRepo(dir)
	if err != nil {
		t.Fatalf("NewSurveyRepo: %v", err)
	}

	s := &domain.Survey{}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID != "survey_008" {
		t.Errorf("ID = %q, want survey_008 (counter follows the max, not the count)", s.ID)
	}
}

func TestSurveyRepo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewSurveyRepo(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := &domain.Survey{
		Coordinates: []domain.Coordinate{{Lat: 43.0, Lon: -2.0, Elevation: 120.5}},
		Formation:   "flysch",
		Date:        "2026-08-23",
	}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	desc := domain.Description{LocationIndex: 0, Text: "granite outcrop", InferredType: "Granite"}
	if err := repo.AppendDescription(ctx, s.ID, desc); err != nil {
		t.Fatal(err)
	}

	// A fresh repo over the same directory sees the persisted state.
	reopened, err := NewSurveyRepo(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	if got.Formation != "flysch" || got.Date != "2026-08-23" {
		t.Errorf("survey fields lost: %+v", got)
	}
	if len(got.Coordinates) != 1 || got.Coordinates[0].Elevation != 120.5 {
		t.Errorf("coordinates lost: %v", got.Coordinates)
	}
	if len(got.Descriptions) != 1 || got.Descriptions[0] != desc {
		t.Errorf("descriptions lost: %v", got.Descriptions)
	}
}

func TestSurveyRepo_GetByIDMiss(t *testing.T) {
	repo, err := NewSurveyRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByID(context.Background(), "survey_404"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSurveyRepo_AppendToMissingSurvey(t *testing.T) {
	repo, err := NewSurveyRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	err = repo.AppendDescription(context.Background(), "survey_404", domain.Description{Text: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSurveyRepo_ReturnsCopies(t *testing.T) {
	repo, err := NewSurveyRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	s := &domain.Survey{Coordinates: []domain.Coordinate{{Lat: 1}}}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Coordinates[0].Lat = 99

	again, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Coordinates[0].Lat != 1 {
		t.Error("mutation through a returned survey leaked into the repo")
	}
}

func writeSurveyFile(t *testing.T, dir string, f surveyFile) {
	t.Helper()
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "user_surveys", surveyFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
