package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/pkg/metrics"
)

// KnowledgeService is the single shared knowledge-base facade. Lookups are
// case-insensitive exact-name matches over a linear scan, which is fine at
// the expected scale of tens to low hundreds of records.
type KnowledgeService struct {
	repo  ports.KnowledgeRepository
	cache ports.CacheService
}

// NewKnowledgeService creates a new KnowledgeService.
func NewKnowledgeService(repo ports.KnowledgeRepository, cache ports.CacheService) *KnowledgeService {
	return &KnowledgeService{repo: repo, cache: cache}
}

// GetMineral returns the mineral record with the given name, or ErrNotFound.
func (s *KnowledgeService) GetMineral(ctx context.Context, name string) (domain.Record, error) {
	return s.lookup(ctx, domain.KindMineral, name)
}

// GetRock returns the rock record with the given name, or ErrNotFound.
func (s *KnowledgeService) GetRock(ctx context.Context, name string) (domain.Record, error) {
	return s.lookup(ctx, domain.KindRock, name)
}

func (s *KnowledgeService) lookup(ctx context.Context, kind domain.RecordKind, name string) (domain.Record, error) {
	cacheKey := fmt.Sprintf("kb:%s:%s", kind, strings.ToLower(name))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var rec domain.Record
			if err := json.Unmarshal(data, &rec); err == nil {
				metrics.CacheHits.WithLabelValues("kb_lookup").Inc()
				return rec, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("kb_lookup").Inc()
	}

	records, err := s.collection(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.NameEquals(name) {
			if s.cache != nil {
				if data, err := json.Marshal(rec); err == nil {
					_ = s.cache.Set(ctx, cacheKey, data, 600)
				}
			}
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SearchByProperty returns every record of the given kind whose property
// value contains the query, case-insensitively.
func (s *KnowledgeService) SearchByProperty(ctx context.Context, property, value string, kind domain.RecordKind) ([]domain.Record, error) {
	records, err := s.collection(ctx, kind)
	if err != nil {
		return nil, err
	}
	var results []domain.Record
	for _, rec := range records {
		if rec.MatchesProperty(property, value) {
			results = append(results, rec)
		}
	}
	return results, nil
}

// AddMineral appends a mineral record and persists the full collection.
func (s *KnowledgeService) AddMineral(ctx context.Context, rec domain.Record) error {
	if rec.Name() == "" {
		return fmt.Errorf("mineral record must have a name")
	}
	if err := s.repo.AddMineral(ctx, rec); err != nil {
		return fmt.Errorf("add mineral: %w", err)
	}
	metrics.RecordsAdded.WithLabelValues(string(domain.KindMineral)).Inc()
	s.invalidate(ctx, domain.KindMineral, rec.Name())
	return nil
}

// AddRock appends a rock record and persists the full collection.
func (s *KnowledgeService) AddRock(ctx context.Context, rec domain.Record) error {
	if rec.Name() == "" {
		return fmt.Errorf("rock record must have a name")
	}
	if err := s.repo.AddRock(ctx, rec); err != nil {
		return fmt.Errorf("add rock: %w", err)
	}
	metrics.RecordsAdded.WithLabelValues(string(domain.KindRock)).Inc()
	s.invalidate(ctx, domain.KindRock, rec.Name())
	return nil
}

// Details resolves an inferred type name to its knowledge-base details,
// consulting minerals before rocks (the order the field CLI reports in).
// A miss in both collections degrades to "unknown" carrying just the name.
func (s *KnowledgeService) Details(ctx context.Context, name string) domain.TypeDetails {
	if rec, err := s.GetMineral(ctx, name); err == nil {
		return domain.TypeDetails{Kind: domain.KindMineral, Data: rec}
	}
	if rec, err := s.GetRock(ctx, name); err == nil {
		return domain.TypeDetails{Kind: domain.KindRock, Data: rec}
	}
	return domain.TypeDetails{Kind: domain.KindUnknown, Data: domain.Record{"name": name}}
}

// Reload re-reads both collections from storage.
func (s *KnowledgeService) Reload(ctx context.Context) error {
	return s.repo.Reload(ctx)
}

func (s *KnowledgeService) collection(ctx context.Context, kind domain.RecordKind) ([]domain.Record, error) {
	switch kind {
	case domain.KindMineral:
		return s.repo.Minerals(ctx)
	case domain.KindRock:
		return s.repo.Rocks(ctx)
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

func (s *KnowledgeService) invalidate(ctx context.Context, kind domain.RecordKind, name string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, fmt.Sprintf("kb:%s:%s", kind, strings.ToLower(name)))
}
