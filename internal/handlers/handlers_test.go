package handlers

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/middleware"
	"github.com/crosspostx/backend/internal/models"
	"github.com/crosspostx/backend/internal/pipeline"
	"github.com/crosspostx/backend/validators"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByPrivyID(ctx context.Context, privyUserID string) (*models.User, error) {
	args := m.Called(ctx, privyUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockAccountRepository is a mock implementation of repositories.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *models.MonitoredAccount) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.MonitoredAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonitoredAccount), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]models.MonitoredAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonitoredAccount), args.Error(1)
}

func (m *MockAccountRepository) ListActiveAccounts(ctx context.Context) ([]models.MonitoredAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MonitoredAccount), args.Error(1)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockAccountRepository) UpdateWatermark(ctx context.Context, id string, checkedAt time.Time, lastTweetID string) error {
	return m.Called(ctx, id, checkedAt, lastTweetID).Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockLogRepository is a mock implementation of repositories.CrosspostLogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) CreateLog(ctx context.Context, log *models.CrosspostLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockLogRepository) ExistsForTweet(ctx context.Context, tweetID string) (bool, error) {
	args := m.Called(ctx, tweetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLogRepository) ListPending(ctx context.Context) ([]models.CrosspostLog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CrosspostLog), args.Error(1)
}

func (m *MockLogRepository) MarkCompleted(ctx context.Context, id, castHash string, processedAt time.Time) error {
	return m.Called(ctx, id, castHash, processedAt).Error(0)
}

func (m *MockLogRepository) MarkFailed(ctx context.Context, id, errorMessage string, processedAt time.Time) error {
	return m.Called(ctx, id, errorMessage, processedAt).Error(0)
}

func (m *MockLogRepository) ListLogsByUser(ctx context.Context, userID string, limit int) ([]models.CrosspostLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CrosspostLog), args.Error(1)
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()

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

func authedUser() *models.User {
	return &models.User{ID: "user-1", PrivyUserID: "did:privy:abc"}
}

func TestHealthCheck(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/health", "")

	require.NoError(t, HealthCheck(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "crosspostx-api", body["service"])
}

func TestFarcasterHandler_RefusesServerSidePublishing(t *testing.T) {
	h := NewFarcasterHandler()

	c, rec := newTestContext(t, http.MethodPost, "/api/farcaster/crosspost", "")
	require.NoError(t, h.Crosspost(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "client-side")

	c, rec = newTestContext(t, http.MethodGet, "/api/farcaster/crosspost", "")
	require.NoError(t, h.TestConnection(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "client-side")
}

func privyToken(t *testing.T, appID string) (string, *ecdsa.PublicKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    "privy.io",
		Audience:  jwt.ClaimStrings{appID},
		Subject:   "did:privy:abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed, &key.PublicKey
}

func TestLogin_FirstLoginCreatesUser(t *testing.T) {
	tokenString, pub := privyToken(t, "app-id")
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(nil, gorm.ErrRecordNotFound)
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.PrivyUserID == "did:privy:abc" && u.Email == "alice@example.com"
	})).Return(nil)

	h := NewAuthHandler(users, "app-id", pub)
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"idToken":"`+tokenString+`","email":"alice@example.com"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestLogin_RepeatLoginRefreshesEmail(t *testing.T) {
	tokenString, pub := privyToken(t, "app-id")
	existing := authedUser()
	existing.Email = "old@example.com"
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(existing, nil)
	users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == "user-1" && u.Email == "new@example.com"
	})).Return(nil)

	h := NewAuthHandler(users, "app-id", pub)
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"idToken":"`+tokenString+`","email":"new@example.com"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new@example.com")
	users.AssertExpectations(t)
}

func TestLogin_RepeatLoginWithoutEmailLeavesUserUntouched(t *testing.T) {
	tokenString, pub := privyToken(t, "app-id")
	existing := authedUser()
	existing.Email = "old@example.com"
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(existing, nil)

	h := NewAuthHandler(users, "app-id", pub)
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"idToken":"`+tokenString+`"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestLogin_InvalidToken(t *testing.T) {
	_, pub := privyToken(t, "app-id")

	h := NewAuthHandler(new(MockUserRepository), "app-id", pub)
	c, _ := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"idToken":"not-a-jwt"}`)

	err := h.Login(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestGetUser(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(authedUser(), nil)
	h := NewAuthHandler(users, "app-id", nil)

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/auth/user?privyUserId=did:privy:abc", "")
	require.NoError(t, h.GetUser(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "did:privy:abc")
}

func TestGetUser_MissingParam(t *testing.T) {
	h := NewAuthHandler(new(MockUserRepository), "app-id", nil)

	c, _ := newTestContext(t, http.MethodGet, "/api/v1/auth/user", "")
	err := h.GetUser(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:ghost").Return(nil, gorm.ErrRecordNotFound)
	h := NewAuthHandler(users, "app-id", nil)

	c, _ := newTestContext(t, http.MethodGet, "/api/v1/auth/user?privyUserId=did:privy:ghost", "")
	err := h.GetUser(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCreateAccount_StripsAtPrefix(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(authedUser(), nil)
	accounts := new(MockAccountRepository)
	accounts.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a *models.MonitoredAccount) bool {
		return a.TwitterUsername == "alice" && a.UserID == "user-1" && a.IsActive
	})).Return(nil)

	h := NewAccountHandler(accounts, users)
	c, rec := newTestContext(t, http.MethodPost, "/api/accounts", `{"twitter_username":"@alice"}`)
	c.Set(middleware.ContextKeyPrivyUserID, "did:privy:abc")

	require.NoError(t, h.CreateAccount(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	accounts.AssertExpectations(t)
}

func TestCreateAccount_NoIdentity(t *testing.T) {
	h := NewAccountHandler(new(MockAccountRepository), new(MockUserRepository))
	c, _ := newTestContext(t, http.MethodPost, "/api/accounts", `{"twitter_username":"alice"}`)

	err := h.CreateAccount(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestUpdateAccount_WrongOwnerLooksLikeNotFound(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(authedUser(), nil)
	accounts := new(MockAccountRepository)
	accounts.On("GetAccountByID", mock.Anything, "acct-9").Return(&models.MonitoredAccount{
		ID:     "acct-9",
		UserID: "someone-else",
	}, nil)

	h := NewAccountHandler(accounts, users)
	c, _ := newTestContext(t, http.MethodPatch, "/api/accounts/acct-9", `{"is_active":false}`)
	c.SetParamNames("id")
	c.SetParamValues("acct-9")
	c.Set(middleware.ContextKeyPrivyUserID, "did:privy:abc")

	err := h.UpdateAccount(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	accounts.AssertNotCalled(t, "SetAccountActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestListCrossposts_DefaultLimit(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(authedUser(), nil)
	logs := new(MockLogRepository)
	logs.On("ListLogsByUser", mock.Anything, "user-1", defaultHistoryLimit).Return([]models.CrosspostLog{}, nil)

	h := NewCrosspostLogHandler(logs, users)
	c, rec := newTestContext(t, http.MethodGet, "/api/crossposts", "")
	c.Set(middleware.ContextKeyPrivyUserID, "did:privy:abc")

	require.NoError(t, h.ListCrossposts(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	logs.AssertExpectations(t)
}

func TestListCrossposts_InvalidLimit(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetUserByPrivyID", mock.Anything, "did:privy:abc").Return(authedUser(), nil)

	h := NewCrosspostLogHandler(new(MockLogRepository), users)
	c, _ := newTestContext(t, http.MethodGet, "/api/crossposts?limit=0", "")
	c.Set(middleware.ContextKeyPrivyUserID, "did:privy:abc")

	err := h.ListCrossposts(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

type fakePipelineService struct {
	result *pipeline.Result
	health *pipeline.Health
}

func (f *fakePipelineService) Run(ctx context.Context) *pipeline.Result { return f.result }

func (f *fakePipelineService) CheckHealth(ctx context.Context) *pipeline.Health { return f.health }

func TestRunPipeline(t *testing.T) {
	service := &fakePipelineService{result: &pipeline.Result{
		Summary: pipeline.Summary{NewTweetsFound: 2, SuccessfulCrossposts: 2},
	}}

	h := NewPipelineHandler(service)
	c, rec := newTestContext(t, http.MethodPost, "/api/pipeline", "")

	require.NoError(t, h.RunPipeline(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Crosspost pipeline completed")
}

func TestGetHealth_Degraded(t *testing.T) {
	service := &fakePipelineService{health: &pipeline.Health{
		Twitter:   pipeline.Status{Status: "connected", Message: "connection successful"},
		Farcaster: pipeline.Status{Status: "error", Message: "hub unreachable"},
		Database:  pipeline.Status{Status: "connected", Message: "connection successful"},
	}}

	h := NewPipelineHandler(service)
	c, rec := newTestContext(t, http.MethodGet, "/api/pipeline", "")

	require.NoError(t, h.GetHealth(c))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Some systems have issues", body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestMonitorHandler_TestConnectionFailure(t *testing.T) {
	h := NewMonitorHandler(nil, func(ctx context.Context) error {
		return errors.New("timeline unavailable")
	})

	c, rec := newTestContext(t, http.MethodGet, "/api/twitter/monitor", "")
	require.NoError(t, h.TestConnection(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "timeline unavailable")
}
