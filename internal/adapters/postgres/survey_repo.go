package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// SurveyRepo implements ports.SurveyRepository with pgx. Survey IDs come from
// a database sequence, so they stay unique across processes; the rendered form
// matches the file backend ("survey_NNN", zero-padded to three digits).
type SurveyRepo struct {
	db *DB
}

// NewSurveyRepo creates a new SurveyRepo.
func NewSurveyRepo(db *DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

// Create inserts the survey and assigns its sequence-derived ID.
func (r *SurveyRepo) Create(ctx context.Context, s *domain.Survey) error {
	coords, err := json.Marshal(s.Coordinates)
	if err != nil {
		return fmt.Errorf("marshal coordinates: %w", err)
	}
	descs, err := json.Marshal(emptyIfNil(s.Descriptions))
	if err != nil {
		return fmt.Errorf("marshal descriptions: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO surveys (survey_id, formation, survey_date, coordinates, descriptions)
		VALUES ('survey_' || lpad(nextval('survey_id_seq')::text, 3, '0'), $1, $2, $3, $4)
		RETURNING survey_id
	`, s.Formation, s.Date, coords, descs).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	return nil
}

// GetByID returns a survey, or domain.ErrNotFound.
func (r *SurveyRepo) GetByID(ctx context.Context, id string) (*domain.Survey, error) {
	var (
		s      domain.Survey
		coords []byte
		descs  []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT survey_id, COALESCE(formation, ''), survey_date, coordinates, descriptions
		FROM surveys WHERE survey_id = $1
	`, id).Scan(&s.ID, &s.Formation, &s.Date, &coords, &descs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalSurveyFields(&s, coords, descs); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all surveys in creation order.
func (r *SurveyRepo) List(ctx context.Context) ([]domain.Survey, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT survey_id, COALESCE(formation, ''), survey_date, coordinates, descriptions
		FROM surveys ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var surveys []domain.Survey
	for rows.Next() {
		var (
			s      domain.Survey
			coords []byte
			descs  []byte
		)
		if err := rows.Scan(&s.ID, &s.Formation, &s.Date, &coords, &descs); err != nil {
			return nil, err
		}
		if err := unmarshalSurveyFields(&s, coords, descs); err != nil {
			return nil, err
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}

// AppendDescription appends one description to the survey's jsonb sequence.
func (r *SurveyRepo) AppendDescription(ctx context.Context, surveyID string, desc domain.Description) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("marshal description: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE surveys
		SET descriptions = descriptions || $2::jsonb
		WHERE survey_id = $1
	`, surveyID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func unmarshalSurveyFields(s *domain.Survey, coords, descs []byte) error {
	if err := json.Unmarshal(coords, &s.Coordinates); err != nil {
		return fmt.Errorf("parse coordinates for %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(descs, &s.Descriptions); err != nil {
		return fmt.Errorf("parse descriptions for %s: %w", s.ID, err)
	}
	return nil
}

func emptyIfNil(descs []domain.Description) []domain.Description {
	if descs == nil {
		return []domain.Description{}
	}
	return descs
}
