package usecases_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
)

func TestKnowledgeLookup(t *testing.T) {
	svc := usecases.NewKnowledgeService(testKnowledgeRepo(), nil)
	ctx := context.Background()

	t.Run("case insensitive", func(t *testing.T) {
		for _, name := range []string{"Quartz", "quartz", "QUARTZ"} {
			rec, err := svc.GetMineral(ctx, name)
			if err != nil {
				t.Fatalf("GetMineral(%q): %v", name, err)
			}
			if rec.Name() != "Quartz" {
				t.Errorf("GetMineral(%q) = %q", name, rec.Name())
			}
		}
	})

	t.Run("miss", func(t *testing.T) {
		if _, err := svc.GetMineral(ctx, "Unobtainium"); err != domain.ErrNotFound {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if _, err := svc.GetRock(ctx, "Quartz"); err != domain.ErrNotFound {
			t.Errorf("mineral name found in rock collection: %v", err)
		}
	})
}

func TestKnowledgeLookup_CacheReadThrough(t *testing.T) {
	cache := newMockCache()
	svc := usecases.NewKnowledgeService(testKnowledgeRepo(), cache)
	ctx := context.Background()

	rec, err := svc.GetRock(ctx, "Granite")
	if err != nil {
		t.Fatalf("GetRock: %v", err)
	}
	if rec.Name() != "Granite" {
		t.Fatalf("rec = %v", rec)
	}

	data, ok := cache.store["kb:rock:granite"]
	if !ok {
		t.Fatalf("lookup did not populate the cache; keys: %v", keysOf(cache.store))
	}
	var cached domain.Record
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Fatalf("cached value is not a record: %v", err)
	}
	if cached.Name() != "Granite" {
		t.Errorf("cached record = %v", cached)
	}

	// A poisoned cache entry wins on the next read; prove the hit path is
	// served from the cache rather than the repo.
	cache.store["kb:rock:granite"] = []byte(`{"name":"Granite","note":"from-cache"}`)
	rec, err = svc.GetRock(ctx, "Granite")
	if err != nil {
		t.Fatalf("GetRock (cached): %v", err)
	}
	if rec["note"] != "from-cache" {
		t.Errorf("second lookup bypassed the cache: %v", rec)
	}
}

func TestKnowledgeAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates cache", func(t *testing.T) {
		cache := newMockCache()
		cache.store["kb:mineral:olivine"] = []byte(`{"name":"Olivine"}`)
		svc := usecases.NewKnowledgeService(testKnowledgeRepo(), cache)

		if err := svc.AddMineral(ctx, domain.Record{"name": "Olivine", "hardness": 6.5}); err != nil {
			t.Fatalf("AddMineral: %v", err)
		}
		if _, ok := cache.store["kb:mineral:olivine"]; ok {
			t.Error("stale cache entry survived the add")
		}
		rec, err := svc.GetMineral(ctx, "olivine")
		if err != nil || rec.Name() != "Olivine" {
			t.Errorf("added mineral not retrievable: %v, %v", rec, err)
		}
	})

	t.Run("name required", func(t *testing.T) {
		svc := usecases.NewKnowledgeService(testKnowledgeRepo(), nil)
		if err := svc.AddMineral(ctx, domain.Record{"hardness": 5.0}); err == nil {
			t.Error("nameless mineral accepted")
		}
		if err := svc.AddRock(ctx, domain.Record{}); err == nil {
			t.Error("nameless rock accepted")
		}
	})
}

func TestSearchByProperty(t *testing.T) {
	svc := usecases.NewKnowledgeService(testKnowledgeRepo(), nil)
	ctx := context.Background()

	results, err := svc.SearchByProperty(ctx, "type", "igneous", domain.KindRock)
	if err != nil {
		t.Fatalf("SearchByProperty: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected Granite and Basalt, got %v", results)
	}

	// Substring, case-insensitive.
	results, err = svc.SearchByProperty(ctx, "type", "IGN", domain.KindRock)
	if err != nil || len(results) != 2 {
		t.Errorf("substring search: %v, %v", results, err)
	}

	results, err = svc.SearchByProperty(ctx, "type", "metamorphic", domain.KindRock)
	if err != nil || len(results) != 0 {
		t.Errorf("expected no metamorphic rocks, got %v", results)
	}

	if _, err := svc.SearchByProperty(ctx, "type", "x", domain.RecordKind("gemstone")); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestDetails(t *testing.T) {
	repo := testKnowledgeRepo()
	// Name present in both collections resolves as a mineral here.
	repo.rocks = append(repo.rocks, domain.Record{"name": "Quartz", "type": "vein"})
	svc := usecases.NewKnowledgeService(repo, nil)
	ctx := context.Background()

	d := svc.Details(ctx, "Quartz")
	if d.Kind != domain.KindMineral {
		t.Errorf("collision resolved to %s, want mineral", d.Kind)
	}

	d = svc.Details(ctx, "Granite")
	if d.Kind != domain.KindRock || d.Data.Name() != "Granite" {
		t.Errorf("details = %+v", d)
	}

	d = svc.Details(ctx, "Kryptonite")
	if d.Kind != domain.KindUnknown {
		t.Errorf("unknown name resolved to %s", d.Kind)
	}
	if d.Data.Name() != "Kryptonite" {
		t.Errorf("unknown details should carry the name, got %v", d.Data)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
