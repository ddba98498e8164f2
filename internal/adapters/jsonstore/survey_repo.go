package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

const surveyFileName = "survey_records.json"

type surveyFile struct {
	Surveys []domain.Survey `json:"surveys"`
}

// SurveyRepo implements ports.SurveyRepository over a single JSON file.
// The collection is loaded once and mutated in memory; every mutation
// rewrites the whole file atomically.
type SurveyRepo struct {
	path string

	mu      sync.Mutex
	surveys []domain.Survey
	lastID  int64
}

// NewSurveyRepo loads (or initializes) the survey collection under dir.
// The ID counter is seeded from the highest persisted ID, not the collection
// length, so IDs stay unique even after out-of-order history.
func NewSurveyRepo(dir string) (*SurveyRepo, error) {
	r := &SurveyRepo{path: filepath.Join(dir, "user_surveys", surveyFileName)}

	var f surveyFile
	if err := readFile(r.path, &f); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		f.Surveys = []domain.Survey{}
	}
	r.surveys = f.Surveys

	for _, s := range r.surveys {
		if n, ok := parseSurveyID(s.ID); ok && n > r.lastID {
			r.lastID = n
		}
	}
	return r, nil
}

// Create assigns the next sequential ID and persists the collection.
func (r *SurveyRepo) Create(ctx context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	survey.ID = fmt.Sprintf("survey_%03d", r.lastID)
	r.surveys = append(r.surveys, *survey)

	if err := r.persist(); err != nil {
		// Roll back the in-memory append so memory and disk stay in sync.
		r.surveys = r.surveys[:len(r.surveys)-1]
		r.lastID--
		survey.ID = ""
		return err
	}
	return nil
}

// GetByID returns a copy of the survey, or domain.ErrNotFound.
func (r *SurveyRepo) GetByID(ctx context.Context, id string) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.surveys {
		if r.surveys[i].ID == id {
			s := copySurvey(r.surveys[i])
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns copies of all surveys in creation order.
func (r *SurveyRepo) List(ctx context.Context) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Survey, len(r.surveys))
	for i, s := range r.surveys {
		out[i] = copySurvey(s)
	}
	return out, nil
}

// AppendDescription appends to the survey's description sequence and persists.
func (r *SurveyRepo) AppendDescription(ctx context.Context, surveyID string, desc domain.Description) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.surveys {
		if r.surveys[i].ID != surveyID {
			continue
		}
		r.surveys[i].Descriptions = append(r.surveys[i].Descriptions, desc)
		if err := r.persist(); err != nil {
			r.surveys[i].Descriptions = r.surveys[i].Descriptions[:len(r.surveys[i].Descriptions)-1]
			return err
		}
		return nil
	}
	return domain.ErrNotFound
}

func (r *SurveyRepo) persist() error {
	return writeFileAtomic(r.path, surveyFile{Surveys: r.surveys})
}

func copySurvey(s domain.Survey) domain.Survey {
	out := s
	out.Coordinates = append([]domain.Coordinate(nil), s.Coordinates...)
	out.Descriptions = append([]domain.Description(nil), s.Descriptions...)
	return out
}

// parseSurveyID extracts the numeric suffix of a "survey_NNN" identifier.
func parseSurveyID(id string) (int64, bool) {
	rest, found := strings.CutPrefix(id, "survey_")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
