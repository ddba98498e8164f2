package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
)

func newUpdater(repo *mockKnowledgeRepo, source *mockRecordSource) *usecases.UpdaterService {
	return usecases.NewUpdaterService(source, usecases.NewKnowledgeService(repo, nil))
}

func TestUpdate_AppendsNewRecords(t *testing.T) {
	repo := testKnowledgeRepo()
	source := &mockRecordSource{
		mineralsFn: func(ctx context.Context) ([]domain.Record, error) {
			return []domain.Record{
				{"name": "Olivine", "hardness": 6.5},
				{"name": "Quartz", "hardness": 7.0}, // already known
				{"name": ""},                        // nameless
			}, nil
		},
		rocksFn: func(ctx context.Context) ([]domain.Record, error) {
			return []domain.Record{
				{"name": "Gneiss", "type": "metamorphic"},
				{"name": "granite", "type": "igneous"}, // known, different case
			}, nil
		},
	}

	result, err := newUpdater(repo, source).Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if result.MineralsAdded != 1 {
		t.Errorf("minerals added = %d, want 1", result.MineralsAdded)
	}
	if result.RocksAdded != 1 {
		t.Errorf("rocks added = %d, want 1", result.RocksAdded)
	}
	if result.Skipped != 3 {
		t.Errorf("skipped = %d, want 3 (duplicate, nameless, case-folded duplicate)", result.Skipped)
	}
	if len(repo.minerals) != 4 || len(repo.rocks) != 4 {
		t.Errorf("repo sizes %d/%d after update", len(repo.minerals), len(repo.rocks))
	}
}

func TestUpdate_FailedFetchIsZeroResults(t *testing.T) {
	repo := testKnowledgeRepo()
	source := &mockRecordSource{
		mineralsFn: func(ctx context.Context) ([]domain.Record, error) {
			return nil, errors.New("wikipedia unreachable")
		},
		rocksFn: func(ctx context.Context) ([]domain.Record, error) {
			return []domain.Record{{"name": "Shale", "type": "sedimentary"}}, nil
		},
	}

	result, err := newUpdater(repo, source).Update(context.Background())
	if err != nil {
		t.Fatalf("a failed source must not fail the whole update: %v", err)
	}
	if result.MineralsAdded != 0 {
		t.Errorf("minerals added = %d after failed fetch", result.MineralsAdded)
	}
	if result.RocksAdded != 1 {
		t.Errorf("rocks added = %d, the healthy source should still apply", result.RocksAdded)
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	repo := testKnowledgeRepo()
	recs := []domain.Record{{"name": "Olivine", "hardness": 6.5}}
	source := &mockRecordSource{
		mineralsFn: func(ctx context.Context) ([]domain.Record, error) { return recs, nil },
	}
	u := newUpdater(repo, source)
	ctx := context.Background()

	first, err := u.Update(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := u.Update(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.MineralsAdded != 1 || second.MineralsAdded != 0 || second.Skipped != 1 {
		t.Errorf("first=%+v second=%+v", first, second)
	}
	if len(repo.minerals) != 4 {
		t.Errorf("repo holds %d minerals after two updates", len(repo.minerals))
	}
}
