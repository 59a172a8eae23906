package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testServiceLogger() *ServiceLogger {
	return NewServiceLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), LogConfig{Service: "test", Component: "test"})
}

// MockQuestionSource is a mock implementation of QuestionSource
type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) Random(ctx context.Context, category models.Category, difficulty models.DifficultyLevel) (*models.Question, error) {
	args := m.Called(ctx, category, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionSource) ByIDs(ctx context.Context, ids []string) (map[string]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.Question), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetRandom(ctx context.Context, filters repositories.RandomQuestionFilters) ([]*models.Question, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) CountByCategory(ctx context.Context) (map[models.Category]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Category]int64), args.Error(1)
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, record *models.HistoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetStats(ctx context.Context, userID string) (*repositories.HistoryStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.HistoryStats), args.Error(1)
}

// MockCollectionRepository is a mock implementation of CollectionRepository
type MockCollectionRepository struct {
	mock.Mock
	kind models.CollectionKind
}

func (m *MockCollectionRepository) Kind() models.CollectionKind {
	return m.kind
}

func (m *MockCollectionRepository) Exists(ctx context.Context, userID, questionID string) (bool, error) {
	args := m.Called(ctx, userID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCollectionRepository) Add(ctx context.Context, userID, questionID string) error {
	args := m.Called(ctx, userID, questionID)
	return args.Error(0)
}

func (m *MockCollectionRepository) Remove(ctx context.Context, userID, questionID string) error {
	args := m.Called(ctx, userID, questionID)
	return args.Error(0)
}

func (m *MockCollectionRepository) List(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionEntry), args.Error(1)
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockRepository bundles the per-table mocks
type MockRepository struct {
	question  *MockQuestionRepository
	history   *MockHistoryRepository
	favorites *MockCollectionRepository
	wrongBook *MockCollectionRepository
	profile   *MockProfileRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		question:  &MockQuestionRepository{},
		history:   &MockHistoryRepository{},
		favorites: &MockCollectionRepository{kind: models.CollectionFavorites},
		wrongBook: &MockCollectionRepository{kind: models.CollectionWrongBook},
		profile:   &MockProfileRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository    { return m.question }
func (m *MockRepository) History() repositories.HistoryRepository      { return m.history }
func (m *MockRepository) Favorites() repositories.CollectionRepository { return m.favorites }
func (m *MockRepository) WrongBook() repositories.CollectionRepository { return m.wrongBook }
func (m *MockRepository) Profile() repositories.ProfileRepository      { return m.profile }

func (m *MockRepository) Collection(kind models.CollectionKind) (repositories.CollectionRepository, error) {
	if kind == models.CollectionWrongBook {
		return m.wrongBook, nil
	}
	return m.favorites, nil
}

// MockCollectionRemover is a mock implementation of CollectionRemover
type MockCollectionRemover struct {
	mock.Mock
}

func (m *MockCollectionRemover) Remove(ctx context.Context, userID string, kind models.CollectionKind, questionID string) error {
	args := m.Called(ctx, userID, kind, questionID)
	return args.Error(0)
}
