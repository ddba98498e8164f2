package usecases

import (
	"context"
	"log/slog"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/pkg/metrics"
)

// UpdateResult summarizes one knowledge-base refresh.
type UpdateResult struct {
	MineralsAdded int `json:"minerals_added"`
	RocksAdded    int `json:"rocks_added"`
	Skipped       int `json:"skipped"`
}

// UpdaterService refreshes the knowledge base from an external record source.
// A failed fetch from either collection is logged and contributes zero
// records; the other collection still applies.
type UpdaterService struct {
	source    ports.RecordSource
	knowledge *KnowledgeService
}

// NewUpdaterService creates a new UpdaterService.
func NewUpdaterService(source ports.RecordSource, knowledge *KnowledgeService) *UpdaterService {
	return &UpdaterService{source: source, knowledge: knowledge}
}

// Update fetches candidate records and appends the ones not already present.
// Name uniqueness within each collection is preserved by skipping records
// whose name already resolves.
func (s *UpdaterService) Update(ctx context.Context) (*UpdateResult, error) {
	result := &UpdateResult{}

	minerals, err := s.source.FetchMinerals(ctx)
	if err != nil {
		slog.Warn("mineral source fetch failed", "error", err)
		metrics.UpdaterFetchErrors.WithLabelValues("minerals").Inc()
	}
	result.MineralsAdded, result.Skipped = s.applyMinerals(ctx, minerals, result.Skipped)

	rocks, err := s.source.FetchRocks(ctx)
	if err != nil {
		slog.Warn("rock source fetch failed", "error", err)
		metrics.UpdaterFetchErrors.WithLabelValues("rocks").Inc()
	}
	result.RocksAdded, result.Skipped = s.applyRocks(ctx, rocks, result.Skipped)

	return result, nil
}

// ApplyMinerals appends the given mineral records, skipping known names.
func (s *UpdaterService) ApplyMinerals(ctx context.Context, recs []domain.Record) (added, skipped int) {
	return s.applyMinerals(ctx, recs, 0)
}

// ApplyRocks appends the given rock records, skipping known names.
func (s *UpdaterService) ApplyRocks(ctx context.Context, recs []domain.Record) (added, skipped int) {
	return s.applyRocks(ctx, recs, 0)
}

func (s *UpdaterService) applyMinerals(ctx context.Context, recs []domain.Record, skipped int) (int, int) {
	added := 0
	for _, rec := range recs {
		if rec.Name() == "" {
			skipped++
			continue
		}
		if _, err := s.knowledge.GetMineral(ctx, rec.Name()); err == nil {
			skipped++
			continue
		}
		if err := s.knowledge.AddMineral(ctx, rec); err != nil {
			slog.Warn("add mineral failed", "name", rec.Name(), "error", err)
			continue
		}
		added++
	}
	return added, skipped
}

func (s *UpdaterService) applyRocks(ctx context.Context, recs []domain.Record, skipped int) (int, int) {
	added := 0
	for _, rec := range recs {
		if rec.Name() == "" {
			skipped++
			continue
		}
		if _, err := s.knowledge.GetRock(ctx, rec.Name()); err == nil {
			skipped++
			continue
		}
		if err := s.knowledge.AddRock(ctx, rec); err != nil {
			slog.Warn("add rock failed", "name", rec.Name(), "error", err)
			continue
		}
		added++
	}
	return added, skipped
}
