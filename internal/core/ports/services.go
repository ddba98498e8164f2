package ports

import (
	"context"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// Classifier infers a rock/mineral label from a free-text description.
// Implementations are pure functions over the input text; a learned model can
// replace the keyword rules without touching the processing pipeline.
type Classifier interface {
	Classify(text string) (label string, ok bool)
}

// ImageClassifier predicts a class index for an image within the label table
// of the given kind. The core pipeline treats it as an opaque label source.
type ImageClassifier interface {
	Predict(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error)
}

// MapRenderer turns a processed map into a persisted raster artifact and
// returns its path.
type MapRenderer interface {
	Render(ctx context.Context, m *domain.ProcessedMap, surveyID string) (string, error)
}

// EventPublisher publishes survey lifecycle events to a message broker.
// All publishes are best-effort from the caller's point of view.
type EventPublisher interface {
	PublishSurveyCreated(ctx context.Context, survey *domain.Survey) error
	PublishDescriptionAdded(ctx context.Context, surveyID string, desc domain.Description) error
	PublishMapGenerated(ctx context.Context, surveyID, artifactPath string) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RecordSource fetches candidate knowledge-base records from an external
// source. A failed fetch is reported as an error and treated as zero results
// for that source.
type RecordSource interface {
	FetchMinerals(ctx context.Context) ([]domain.Record, error)
	FetchRocks(ctx context.Context) ([]domain.Record, error)
}
