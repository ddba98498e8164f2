package geospatial

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", 43.0, -2.0, 43.0, -2.0, 0, 0.001},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 100},
		{"bilbao to san sebastian", 43.2630, -2.9350, 43.3183, -1.9812, 77430, 500},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111195, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %.1f m, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	ab := Haversine(43.0, -2.0, 43.5, -2.5)
	ba := Haversine(43.5, -2.5, 43.0, -2.0)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}
