package jsonstore

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

type mineralFile struct {
	Minerals []domain.Record `json:"minerals"`
}

type rockFile struct {
	Rocks []domain.Record `json:"rocks"`
}

// KnowledgeRepo implements ports.KnowledgeRepository over minerals.json and
// rocks.json. A missing dataset file degrades to an empty collection with a
// warning rather than failing startup.
type KnowledgeRepo struct {
	dir string

	mu       sync.RWMutex
	minerals []domain.Record
	rocks    []domain.Record
}

// NewKnowledgeRepo loads both collections from dir.
func NewKnowledgeRepo(dir string) (*KnowledgeRepo, error) {
	r := &KnowledgeRepo{dir: dir}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *KnowledgeRepo) load() error {
	var mf mineralFile
	if err := readFile(filepath.Join(r.dir, "minerals.json"), &mf); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		slog.Warn("mineral dataset missing, starting empty", "dir", r.dir)
	}
	var rf rockFile
	if err := readFile(filepath.Join(r.dir, "rocks.json"), &rf); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		slog.Warn("rock dataset missing, starting empty", "dir", r.dir)
	}

	r.mu.Lock()
	r.minerals = mf.Minerals
	r.rocks = rf.Rocks
	r.mu.Unlock()
	return nil
}

// Minerals returns the in-memory mineral collection.
func (r *KnowledgeRepo) Minerals(ctx context.Context) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Record(nil), r.minerals...), nil
}

// Rocks returns the in-memory rock collection.
func (r *KnowledgeRepo) Rocks(ctx context.Context) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Record(nil), r.rocks...), nil
}

// AddMineral appends and rewrites minerals.json.
func (r *KnowledgeRepo) AddMineral(ctx context.Context, rec domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.minerals = append(r.minerals, rec)
	if err := writeFileAtomic(filepath.Join(r.dir, "minerals.json"), mineralFile{Minerals: r.minerals}); err != nil {
		r.minerals = r.minerals[:len(r.minerals)-1]
		return err
	}
	return nil
}

// AddRock appends and rewrites rocks.json.
func (r *KnowledgeRepo) AddRock(ctx context.Context, rec domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rocks = append(r.rocks, rec)
	if err := writeFileAtomic(filepath.Join(r.dir, "rocks.json"), rockFile{Rocks: r.rocks}); err != nil {
		r.rocks = r.rocks[:len(r.rocks)-1]
		return err
	}
	return nil
}

// Reload re-reads both dataset files from disk.
func (r *KnowledgeRepo) Reload(ctx context.Context) error {
	return r.load()
}
