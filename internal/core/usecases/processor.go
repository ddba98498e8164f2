package usecases

import (
	"context"
	"math"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

const (
	// boundaryPathPoints is the number of interpolated points per contact.
	boundaryPathPoints = 5

	// faultThresholdMeters is the minimum adjacent elevation delta that
	// qualifies as a fault.
	faultThresholdMeters = 50.0
)

// ProcessorService derives the structured map model from raw survey data:
// classified units, interpolated boundaries between adjacent units, and
// detected structural features. It never fails on empty or partial input;
// missing data degrades to empty derived collections.
type ProcessorService struct {
	knowledge *KnowledgeService
}

// NewProcessorService creates a new ProcessorService.
func NewProcessorService(knowledge *KnowledgeService) *ProcessorService {
	return &ProcessorService{knowledge: knowledge}
}

// Process transforms a mapping input into a processed map. The derivation is
// pure over its input: calling it twice on identical input yields identical
// output.
func (s *ProcessorService) Process(ctx context.Context, in *domain.MappingInput) *domain.ProcessedMap {
	if in == nil {
		return &domain.ProcessedMap{}
	}
	return &domain.ProcessedMap{
		SurveyID:           in.SurveyID,
		Units:              s.classifyUnits(ctx, in.Units),
		Boundaries:         inferBoundaries(in.Units),
		StructuralFeatures: detectFaults(in.Coordinates),
		Coordinates:        in.Coordinates,
	}
}

// classifyUnits attaches knowledge-base details to each unit. The rock
// collection is consulted before the mineral collection: a name present in
// both resolves to "rock". Lookup misses degrade to "unknown".
func (s *ProcessorService) classifyUnits(ctx context.Context, units []domain.UnitInput) []domain.GeologicalUnit {
	out := make([]domain.GeologicalUnit, 0, len(units))
	for _, u := range units {
		out = append(out, domain.GeologicalUnit{
			Type:        u.Type,
			Coordinates: u.Coordinates,
			Properties:  s.unitProperties(ctx, u.Type),
			Description: u.Description,
		})
	}
	return out
}

func (s *ProcessorService) unitProperties(ctx context.Context, unitType string) domain.UnitProperties {
	if rec, err := s.knowledge.GetRock(ctx, unitType); err == nil {
		return domain.UnitProperties{Classification: domain.KindRock, Data: rec}
	}
	if rec, err := s.knowledge.GetMineral(ctx, unitType); err == nil {
		return domain.UnitProperties{Classification: domain.KindMineral, Data: rec}
	}
	return domain.UnitProperties{
		Classification: domain.KindUnknown,
		Data:           domain.Record{"name": unitType},
	}
}

// inferBoundaries generates one contact boundary per adjacent unit pair, in
// input order, traced between the last coordinate of the earlier unit and the
// first coordinate of the later one. Fewer than two units produce none.
func inferBoundaries(units []domain.UnitInput) []domain.Boundary {
	if len(units) < 2 {
		return nil
	}
	boundaries := make([]domain.Boundary, 0, len(units)-1)
	for i := 0; i < len(units)-1; i++ {
		a, b := units[i], units[i+1]
		if len(a.Coordinates) == 0 || len(b.Coordinates) == 0 {
			continue
		}
		boundaries = append(boundaries, domain.Boundary{
			Type:    "contact",
			Between: [2]string{a.Type, b.Type},
			Coordinates: interpolate(
				a.Coordinates[len(a.Coordinates)-1],
				b.Coordinates[0],
				boundaryPathPoints,
			),
		})
	}
	return boundaries
}

// interpolate returns n evenly spaced points between p1 and p2 inclusive,
// interpolating lat, lon, and elevation independently.
func interpolate(p1, p2 domain.Coordinate, n int) []domain.Coordinate {
	path := make([]domain.Coordinate, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		path[i] = domain.Coordinate{
			Lat:       p1.Lat + (p2.Lat-p1.Lat)*t,
			Lon:       p1.Lon + (p2.Lon-p1.Lon)*t,
			Elevation: p1.Elevation + (p2.Elevation-p1.Elevation)*t,
		}
	}
	return path
}

// detectFaults scans adjacent coordinate pairs for the largest absolute
// elevation delta and emits at most one fault when that delta exceeds the
// threshold. The first occurrence wins ties.
func detectFaults(coords []domain.Coordinate) []domain.StructuralFeature {
	if len(coords) < 2 {
		return nil
	}
	maxDelta, maxIdx := 0.0, -1
	for i := 0; i < len(coords)-1; i++ {
		delta := math.Abs(coords[i+1].Elevation - coords[i].Elevation)
		if delta > maxDelta {
			maxDelta, maxIdx = delta, i
		}
	}
	if maxDelta <= faultThresholdMeters {
		return nil
	}
	return []domain.StructuralFeature{{
		Type:         "fault",
		Coordinates:  []domain.Coordinate{coords[maxIdx], coords[maxIdx+1]},
		Displacement: maxDelta,
	}}
}
