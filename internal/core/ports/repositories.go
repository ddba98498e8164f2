package ports

import (
	"context"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// SurveyRepository persists surveys. Create assigns the survey its ID from a
// monotonic counter seeded from the highest persisted ID, so IDs stay unique
// under concurrent creation within one process.
type SurveyRepository interface {
	Create(ctx context.Context, survey *domain.Survey) error
	GetByID(ctx context.Context, id string) (*domain.Survey, error)
	List(ctx context.Context) ([]domain.Survey, error)
	AppendDescription(ctx context.Context, surveyID string, desc domain.Description) error
}

// KnowledgeRepository persists the mineral and rock collections. Adds append
// and persist the whole collection; lookups over the returned slices are the
// caller's concern (linear scan at this dataset scale).
type KnowledgeRepository interface {
	Minerals(ctx context.Context) ([]domain.Record, error)
	Rocks(ctx context.Context) ([]domain.Record, error)
	AddMineral(ctx context.Context, rec domain.Record) error
	AddRock(ctx context.Context, rec domain.Record) error
	Reload(ctx context.Context) error
}
