package workflows

import (
	"context"
	"fmt"

	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
)

// ApplyResult is the outcome of one fetch-and-apply activity.
type ApplyResult struct {
	Added   int
	Skipped int
}

// UpdateActivities holds the activity implementations for the knowledge
// update workflow.
type UpdateActivities struct {
	Source  ports.RecordSource
	Updater *usecases.UpdaterService
}

// FetchAndApplyMinerals fetches mineral candidates and appends unknown names.
func (a *UpdateActivities) FetchAndApplyMinerals(ctx context.Context) (*ApplyResult, error) {
	recs, err := a.Source.FetchMinerals(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch minerals: %w", err)
	}
	added, skipped := a.Updater.ApplyMinerals(ctx, recs)
	return &ApplyResult{Added: added, Skipped: skipped}, nil
}

// FetchAndApplyRocks fetches rock candidates and appends unknown names.
func (a *UpdateActivities) FetchAndApplyRocks(ctx context.Context) (*ApplyResult, error) {
	recs, err := a.Source.FetchRocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rocks: %w", err)
	}
	added, skipped := a.Updater.ApplyRocks(ctx, recs)
	return &ApplyResult{Added: added, Skipped: skipped}, nil
}
