package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/pkg/geospatial"
	"github.com/mjkeller/geosurvey/internal/pkg/metrics"
)

// SurveyService handles survey lifecycle: creation, description appends with
// type inference, and assembly of the processor's mapping input.
type SurveyService struct {
	surveys    ports.SurveyRepository
	knowledge  *KnowledgeService
	classifier ports.Classifier
	publisher  ports.EventPublisher
}

// NewSurveyService creates a new SurveyService.
func NewSurveyService(
	surveys ports.SurveyRepository,
	knowledge *KnowledgeService,
	classifier ports.Classifier,
	publisher ports.EventPublisher,
) *SurveyService {
	return &SurveyService{
		surveys:    surveys,
		knowledge:  knowledge,
		classifier: classifier,
		publisher:  publisher,
	}
}

// Create records a new survey and returns it with its assigned ID.
func (s *SurveyService) Create(ctx context.Context, coordinates []domain.Coordinate, formation string) (*domain.Survey, error) {
	survey := &domain.Survey{
		Coordinates:  coordinates,
		Descriptions: []domain.Description{},
		Formation:    formation,
		Date:         time.Now().Format("2006-01-02"),
	}
	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	metrics.SurveysCreated.Inc()

	if s.publisher != nil {
		_ = s.publisher.PublishSurveyCreated(ctx, survey)
	}
	return survey, nil
}

// GetByID returns a survey, or domain.ErrNotFound.
func (s *SurveyService) GetByID(ctx context.Context, id string) (*domain.Survey, error) {
	return s.surveys.GetByID(ctx, id)
}

// List returns all surveys in creation order.
func (s *SurveyService) List(ctx context.Context) ([]domain.Survey, error) {
	return s.surveys.List(ctx)
}

// AddDescription appends a field description to a survey. The type label is
// inferred once, at creation time, and stored with the description. The
// returned details resolve the inferred label against the knowledge base;
// they are nil when no rule matched.
func (s *SurveyService) AddDescription(ctx context.Context, surveyID, text string, locationIndex int) (*domain.TypeDetails, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if locationIndex < 0 || locationIndex >= len(survey.Coordinates) {
		return nil, fmt.Errorf("location_index %d out of range for survey %s with %d coordinates",
			locationIndex, surveyID, len(survey.Coordinates))
	}

	desc := domain.Description{
		LocationIndex: locationIndex,
		Text:          text,
	}
	if label, ok := s.classifier.Classify(text); ok {
		desc.InferredType = label
		metrics.InferenceMatches.WithLabelValues(label).Inc()
	}

	if err := s.surveys.AppendDescription(ctx, surveyID, desc); err != nil {
		return nil, fmt.Errorf("append description: %w", err)
	}
	if desc.InferredType != "" {
		metrics.DescriptionsAdded.WithLabelValues("matched").Inc()
	} else {
		metrics.DescriptionsAdded.WithLabelValues("unmatched").Inc()
	}

	if s.publisher != nil {
		_ = s.publisher.PublishDescriptionAdded(ctx, surveyID, desc)
	}

	if desc.InferredType == "" {
		return nil, nil
	}
	details := s.knowledge.Details(ctx, desc.InferredType)
	return &details, nil
}

// MappingInput assembles the processor input for a survey: one unit per
// description with a non-empty inferred type, anchored at the described
// coordinate. Descriptions pointing outside the coordinate sequence are
// skipped rather than failing the whole derivation.
func (s *SurveyService) MappingInput(ctx context.Context, surveyID string) (*domain.MappingInput, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	in := &domain.MappingInput{
		SurveyID:    survey.ID,
		Coordinates: survey.Coordinates,
	}
	for _, desc := range survey.Descriptions {
		if desc.InferredType == "" {
			continue
		}
		if desc.LocationIndex < 0 || desc.LocationIndex >= len(survey.Coordinates) {
			continue
		}
		in.Units = append(in.Units, domain.UnitInput{
			Type:        desc.InferredType,
			Coordinates: []domain.Coordinate{survey.Coordinates[desc.LocationIndex]},
			Description: desc.Text,
		})
	}
	return in, nil
}

// Stats derives traverse statistics for a survey.
func (s *SurveyService) Stats(ctx context.Context, surveyID string) (*domain.SurveyStats, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	stats := &domain.SurveyStats{
		SurveyID:     survey.ID,
		Points:       len(survey.Coordinates),
		Descriptions: len(survey.Descriptions),
	}
	for i, c := range survey.Coordinates {
		if i == 0 {
			stats.MinElevation, stats.MaxElevation = c.Elevation, c.Elevation
			continue
		}
		prev := survey.Coordinates[i-1]
		stats.TraverseMeters += geospatial.Haversine(prev.Lat, prev.Lon, c.Lat, c.Lon)
		if c.Elevation < stats.MinElevation {
			stats.MinElevation = c.Elevation
		}
		if c.Elevation > stats.MaxElevation {
			stats.MaxElevation = c.Elevation
		}
	}
	return stats, nil
}

// FindNearby returns surveys whose first coordinate lies within radiusMeters
// of the given point. A full scan is acceptable at single-team scale.
func (s *SurveyService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]domain.Survey, error) {
	surveys, err := s.surveys.List(ctx)
	if err != nil {
		return nil, err
	}
	var nearby []domain.Survey
	for _, sv := range surveys {
		if len(sv.Coordinates) == 0 {
			continue
		}
		first := sv.Coordinates[0]
		if geospatial.Haversine(lat, lon, first.Lat, first.Lon) <= radiusMeters {
			nearby = append(nearby, sv)
		}
	}
	return nearby, nil
}
