package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID = "user-1"
	validToken = "valid-token"
)

// MockProvider is a mock implementation of auth.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SendSignInLink(ctx context.Context, email, redirectTo string) error {
	args := m.Called(ctx, email, redirectTo)
	return args.Error(0)
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*auth.Session, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockProvider) GetUser(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockPracticeService is a mock implementation of services.PracticeService
type MockPracticeService struct {
	mock.Mock
}

func (m *MockPracticeService) state(args mock.Arguments) (*models.RoundState, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundState), args.Error(1)
}

func (m *MockPracticeService) CurrentRound(ctx context.Context, userID string) (*models.RoundState, error) {
	return m.state(m.Called(ctx, userID))
}

func (m *MockPracticeService) StartRound(ctx context.Context, userID string, category models.Category, difficulty models.DifficultyLevel) (*models.RoundState, error) {
	return m.state(m.Called(ctx, userID, category, difficulty))
}

func (m *MockPracticeService) Advance(ctx context.Context, userID string) (*models.RoundState, error) {
	return m.state(m.Called(ctx, userID))
}

func (m *MockPracticeService) SubmitAnswer(ctx context.Context, userID string, round int64, answer string) (*models.RoundState, error) {
	return m.state(m.Called(ctx, userID, round, answer))
}

func (m *MockPracticeService) ToggleFavorite(ctx context.Context, userID string, round int64) (*models.RoundState, error) {
	return m.state(m.Called(ctx, userID, round))
}

func (m *MockPracticeService) HandleKey(ctx context.Context, userID, key, input string, round int64) (services.KeyOutcome, *models.RoundState, error) {
	args := m.Called(ctx, userID, key, input, round)
	var state *models.RoundState
	if args.Get(1) != nil {
		state = args.Get(1).(*models.RoundState)
	}
	return args.Get(0).(services.KeyOutcome), state, args.Error(2)
}

// MockCollectionService is a mock implementation of services.CollectionService
type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) List(ctx context.Context, userID string, kind models.CollectionKind) ([]services.CollectionItem, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.CollectionItem), args.Error(1)
}

func (m *MockCollectionService) Remove(ctx context.Context, userID string, kind models.CollectionKind, questionID string) error {
	args := m.Called(ctx, userID, kind, questionID)
	return args.Error(0)
}

func (m *MockCollectionService) Export(ctx context.Context, userID string, kind models.CollectionKind) ([]byte, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDashboardService is a mock implementation of services.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context, userID, email string) *services.DashboardOverview {
	args := m.Called(ctx, userID, email)
	return args.Get(0).(*services.DashboardOverview)
}

type testServer struct {
	router     *gin.Engine
	provider   *MockProvider
	practice   *MockPracticeService
	collection *MockCollectionService
	dashboard  *MockDashboardService
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestServer wires the real routes to mocks. validToken resolves to testUserID.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		router:     gin.New(),
		provider:   &MockProvider{},
		practice:   &MockPracticeService{},
		collection: &MockCollectionService{},
		dashboard:  &MockDashboardService{},
	}
	s.provider.On("GetUser", mock.Anything, validToken).Return(&auth.Session{
		UserID: testUserID,
		Email:  "anna@example.com",
		Token:  validToken,
	}, nil).Maybe()

	manager := NewHandlerManager(Services{
		Practice:   s.practice,
		Collection: s.collection,
		Dashboard:  s.dashboard,
		Auth:       s.provider,
	}, RouterConfig{
		Auth: AuthHandlerConfig{PublicBaseURL: "http://localhost:8080"},
	}, validator.New(), testLogger())
	require.NoError(t, manager.SetupRoutes(s.router))
	return s
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	} else if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
