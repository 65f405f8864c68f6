package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dayflow/core/internal/application/services"
	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/config"
	"github.com/dayflow/core/internal/infrastructure/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func newTestContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr
}

// --- mock repositories ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type mockNoteRepo struct {
	mock.Mock
}

func (m *mockNoteRepo) Upsert(ctx context.Context, note *entities.DailyNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *mockNoteRepo) GetByDate(ctx context.Context, ownerID uuid.UUID, date string) (*entities.DailyNote, error) {
	args := m.Called(ctx, ownerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyNote), args.Error(1)
}

func (m *mockNoteRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.DailyNote, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DailyNote), args.Error(1)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:    "handler-test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "dayflow-test",
	}
}

// --- auth handler ---

func TestAuthHandler_Signup(t *testing.T) {
	userRepo := new(mockUserRepo)
	authService := services.NewAuthService(userRepo, testJWTConfig(), logger.NewNop())
	h := NewAuthHandler(authService, logger.NewNop())
	e := newTestEcho()

	userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, entities.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.User")).Return(nil)

	body := `{"name":"New User","email":"new@example.com","password":"password123"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/signup", body)

	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string        `json:"token"`
		User  entities.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepo)
	authService := services.NewAuthService(userRepo, testJWTConfig(), logger.NewNop())
	h := NewAuthHandler(authService, logger.NewNop())
	e := newTestEcho()

	userRepo.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&entities.User{Email: "taken@example.com"}, nil)

	body := `{"name":"Someone","email":"taken@example.com","password":"password123"}`
	c, _ := newTestContext(e, http.MethodPost, "/api/auth/signup", body)

	httpErr := httpError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "User already exists", httpErr.Message)
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	h := NewAuthHandler(services.NewAuthService(new(mockUserRepo), testJWTConfig(), logger.NewNop()), logger.NewNop())
	e := newTestEcho()

	body := `{"name":"Someone","email":"a@example.com","password":"short"}`
	c, _ := newTestContext(e, http.MethodPost, "/api/auth/signup", body)

	httpErr := httpError(t, h.Signup(c))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	userRepo := new(mockUserRepo)
	authService := services.NewAuthService(userRepo, testJWTConfig(), logger.NewNop())
	h := NewAuthHandler(authService, logger.NewNop())
	e := newTestEcho()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entities.User{Email: "user@example.com", PasswordHash: string(hash)}, nil)

	body := `{"email":"user@example.com","password":"password123"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/auth/login", body)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	userRepo := new(mockUserRepo)
	authService := services.NewAuthService(userRepo, testJWTConfig(), logger.NewNop())
	h := NewAuthHandler(authService, logger.NewNop())
	e := newTestEcho()

	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, entities.ErrUserNotFound)

	body := `{"email":"ghost@example.com","password":"whatever1"}`
	c, _ := newTestContext(e, http.MethodPost, "/api/auth/login", body)

	httpErr := httpError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "Invalid email or password", httpErr.Message)
}
