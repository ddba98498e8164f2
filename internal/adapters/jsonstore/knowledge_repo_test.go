package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

func TestKnowledgeRepo_MissingFilesStartEmpty(t *testing.T) {
	repo, err := NewKnowledgeRepo(t.TempDir())
	if err != nil {
		t.Fatalf("NewKnowledgeRepo: %v", err)
	}
	ctx := context.Background()

	minerals, err := repo.Minerals(ctx)
	if err != nil || len(minerals) != 0 {
		t.Errorf("minerals = %v, %v", minerals, err)
	}
	rocks, err := repo.Rocks(ctx)
	if err != nil || len(rocks) != 0 {
		t.Errorf("rocks = %v, %v", rocks, err)
	}
}

func TestKnowledgeRepo_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "minerals.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewKnowledgeRepo(dir); err == nil {
		t.Error("malformed dataset accepted")
	}
}

func TestKnowledgeRepo_AddAndReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewKnowledgeRepo(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.AddMineral(ctx, domain.Record{"name": "Quartz", "hardness": 7.0}); err != nil {
		t.Fatalf("AddMineral: %v", err)
	}
	if err := repo.AddRock(ctx, domain.Record{"name": "Granite", "type": "igneous"}); err != nil {
		t.Fatalf("AddRock: %v", err)
	}

	// The adds rewrote the dataset files; a second repo sees them.
	reopened, err := NewKnowledgeRepo(dir)
	if err != nil {
		t.Fatal(err)
	}
	minerals, _ := reopened.Minerals(ctx)
	if len(minerals) != 1 || minerals[0].Name() != "Quartz" {
		t.Errorf("minerals after reopen: %v", minerals)
	}
	rocks, _ := reopened.Rocks(ctx)
	if len(rocks) != 1 || rocks[0].Name() != "Granite" {
		t.Errorf("rocks after reopen: %v", rocks)
	}

	// Reload picks up out-of-band edits.
	out := []byte(`{"rocks": [{"name": "Basalt"}, {"name": "Gneiss"}]}`)
	if err := os.WriteFile(filepath.Join(dir, "rocks.json"), out, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repo.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	rocks, _ = repo.Rocks(ctx)
	if len(rocks) != 2 || rocks[1].Name() != "Gneiss" {
		t.Errorf("rocks after reload: %v", rocks)
	}
}

func TestKnowledgeRepo_ReturnsCopies(t *testing.T) {
	repo, err := NewKnowledgeRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := repo.AddMineral(ctx, domain.Record{"name": "Calcite"}); err != nil {
		t.Fatal(err)
	}

	first, _ := repo.Minerals(ctx)
	first[0] = domain.Record{"name": "tampered"}

	second, _ := repo.Minerals(ctx)
	if second[0].Name() != "Calcite" {
		t.Error("slice mutation leaked into the repo")
	}
}
