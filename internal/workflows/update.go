package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// UpdateInput selects which collections to refresh. Zero value refreshes both.
type UpdateInput struct {
	SkipMinerals bool
	SkipRocks    bool
}

// UpdateOutput summarizes one workflow run.
type UpdateOutput struct {
	MineralsAdded int
	RocksAdded    int
	Skipped       int
}

// KnowledgeUpdateWorkflow fetches candidate records from the external sources
// and appends the unknown ones to the knowledge base. Each source is fetched
// and applied independently: a failing source is logged and contributes
// nothing, the other still lands.
func KnowledgeUpdateWorkflow(ctx workflow.Context, input UpdateInput) (*UpdateOutput, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting knowledge update workflow")

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	out := &UpdateOutput{}

	if !input.SkipMinerals {
		var res ApplyResult
		err := workflow.ExecuteActivity(ctx, "FetchAndApplyMinerals").Get(ctx, &res)
		if err != nil {
			logger.Warn("mineral update failed", "error", err)
		} else {
			out.MineralsAdded = res.Added
			out.Skipped += res.Skipped
		}
	}

	if !input.SkipRocks {
		var res ApplyResult
		err := workflow.ExecuteActivity(ctx, "FetchAndApplyRocks").Get(ctx, &res)
		if err != nil {
			logger.Warn("rock update failed", "error", err)
		} else {
			out.RocksAdded = res.Added
			out.Skipped += res.Skipped
		}
	}

	logger.Info("Knowledge update finished",
		"mineralsAdded", out.MineralsAdded, "rocksAdded", out.RocksAdded, "skipped", out.Skipped)
	return out, nil
}
