package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/pkg/metrics"
)

// MapService drives the survey-to-map pipeline: assemble the mapping input,
// derive the structured map, render it, and announce the artifact.
type MapService struct {
	surveys   *SurveyService
	processor *ProcessorService
	renderer  ports.MapRenderer
	publisher ports.EventPublisher
}

// NewMapService creates a new MapService.
func NewMapService(
	surveys *SurveyService,
	processor *ProcessorService,
	renderer ports.MapRenderer,
	publisher ports.EventPublisher,
) *MapService {
	return &MapService{
		surveys:   surveys,
		processor: processor,
		renderer:  renderer,
		publisher: publisher,
	}
}

// ProcessedMap derives the structured map model for a survey without
// rendering it. Derived entities are recomputed on every call.
func (s *MapService) ProcessedMap(ctx context.Context, surveyID string) (*domain.ProcessedMap, error) {
	in, err := s.surveys.MappingInput(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return s.processor.Process(ctx, in), nil
}

// Generate derives the map and renders it to a PNG artifact, returning the
// artifact path alongside the derived model.
func (s *MapService) Generate(ctx context.Context, surveyID string) (*domain.ProcessedMap, string, error) {
	m, err := s.ProcessedMap(ctx, surveyID)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	path, err := s.renderer.Render(ctx, m, surveyID)
	metrics.MapRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MapsGenerated.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("render map for %s: %w", surveyID, err)
	}
	metrics.MapsGenerated.WithLabelValues("ok").Inc()

	if s.publisher != nil {
		_ = s.publisher.PublishMapGenerated(ctx, surveyID, path)
	}
	return m, path, nil
}
