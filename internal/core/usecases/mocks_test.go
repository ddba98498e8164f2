package usecases_test

import (
	"context"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// ---- Mock repositories ----

type mockSurveyRepo struct {
	createFn     func(ctx context.Context, s *domain.Survey) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Survey, error)
	listFn       func(ctx context.Context) ([]domain.Survey, error)
	appendDescFn func(ctx context.Context, surveyID string, desc domain.Description) error
}

func (m *mockSurveyRepo) Create(ctx context.Context, s *domain.Survey) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = "survey_001"
	return nil
}
func (m *mockSurveyRepo) GetByID(ctx context.Context, id string) (*domain.Survey, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockSurveyRepo) List(ctx context.Context) ([]domain.Survey, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockSurveyRepo) AppendDescription(ctx context.Context, surveyID string, desc domain.Description) error {
	if m.appendDescFn != nil {
		return m.appendDescFn(ctx, surveyID, desc)
	}
	return nil
}

type mockKnowledgeRepo struct {
	minerals []domain.Record
	rocks    []domain.Record

	addMineralFn func(ctx context.Context, rec domain.Record) error
	addRockFn    func(ctx context.Context, rec domain.Record) error
}

func (m *mockKnowledgeRepo) Minerals(ctx context.Context) ([]domain.Record, error) {
	return m.minerals, nil
}
func (m *mockKnowledgeRepo) Rocks(ctx context.Context) ([]domain.Record, error) {
	return m.rocks, nil
}
func (m *mockKnowledgeRepo) AddMineral(ctx context.Context, rec domain.Record) error {
	if m.addMineralFn != nil {
		return m.addMineralFn(ctx, rec)
	}
	m.minerals = append(m.minerals, rec)
	return nil
}
func (m *mockKnowledgeRepo) AddRock(ctx context.Context, rec domain.Record) error {
	if m.addRockFn != nil {
		return m.addRockFn(ctx, rec)
	}
	m.rocks = append(m.rocks, rec)
	return nil
}
func (m *mockKnowledgeRepo) Reload(ctx context.Context) error { return nil }

// ---- Mock services ----

type mockImageClassifier struct {
	predictFn func(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error)
}

func (m *mockImageClassifier) Predict(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, image, kind, numClasses)
	}
	return 0, nil
}

type mockRecordSource struct {
	mineralsFn func(ctx context.Context) ([]domain.Record, error)
	rocksFn    func(ctx context.Context) ([]domain.Record, error)
}

func (m *mockRecordSource) FetchMinerals(ctx context.Context) ([]domain.Record, error) {
	if m.mineralsFn != nil {
		return m.mineralsFn(ctx)
	}
	return nil, nil
}
func (m *mockRecordSource) FetchRocks(ctx context.Context) ([]domain.Record, error) {
	if m.rocksFn != nil {
		return m.rocksFn(ctx)
	}
	return nil, nil
}

type mockPublisher struct {
	surveyCreated    []string
	descriptionAdded []string
	mapGenerated     []string
	broadcasts       [][]byte
}

func (m *mockPublisher) PublishSurveyCreated(ctx context.Context, survey *domain.Survey) error {
	m.surveyCreated = append(m.surveyCreated, survey.ID)
	return nil
}
func (m *mockPublisher) PublishDescriptionAdded(ctx context.Context, surveyID string, desc domain.Description) error {
	m.descriptionAdded = append(m.descriptionAdded, surveyID)
	return nil
}
func (m *mockPublisher) PublishMapGenerated(ctx context.Context, surveyID, artifactPath string) error {
	m.mapGenerated = append(m.mapGenerated, surveyID)
	return nil
}
func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error {
	m.broadcasts = append(m.broadcasts, data)
	return nil
}

type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}
func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}
func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

// testKnowledgeRepo seeds a repo with the standard minerals and rocks.
func testKnowledgeRepo() *mockKnowledgeRepo {
	return &mockKnowledgeRepo{
		minerals: []domain.Record{
			{"name": "Quartz", "hardness": 7.0},
			{"name": "Feldspar", "hardness": 6.0},
			{"name": "Calcite", "hardness": 3.0},
		},
		rocks: []domain.Record{
			{"name": "Granite", "type": "igneous"},
			{"name": "Basalt", "type": "igneous"},
			{"name": "Limestone", "type": "sedimentary"},
		},
	}
}
