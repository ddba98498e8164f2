package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// KnowledgeRepo implements ports.KnowledgeRepository over two jsonb tables.
// Records stay schemaless in storage, matching the file backend.
type KnowledgeRepo struct {
	db *DB
}

// NewKnowledgeRepo creates a new KnowledgeRepo.
func NewKnowledgeRepo(db *DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Minerals returns all mineral records in insertion order.
func (r *KnowledgeRepo) Minerals(ctx context.Context) ([]domain.Record, error) {
	return r.list(ctx, "minerals")
}

// Rocks returns all rock records in insertion order.
func (r *KnowledgeRepo) Rocks(ctx context.Context) ([]domain.Record, error) {
	return r.list(ctx, "rocks")
}

// AddMineral inserts a mineral record.
func (r *KnowledgeRepo) AddMineral(ctx context.Context, rec domain.Record) error {
	return r.add(ctx, "minerals", rec)
}

// AddRock inserts a rock record.
func (r *KnowledgeRepo) AddRock(ctx context.Context, rec domain.Record) error {
	return r.add(ctx, "rocks", rec)
}

// Reload is a no-op: reads always hit the database.
func (r *KnowledgeRepo) Reload(ctx context.Context) error {
	return nil
}

func (r *KnowledgeRepo) list(ctx context.Context, table string) ([]domain.Record, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT data FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec domain.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parse %s record: %w", table, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *KnowledgeRepo) add(ctx context.Context, table string, rec domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO `+table+` (name, data) VALUES ($1, $2)`,
		rec.Name(), data)
	return err
}
