package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	args := m.Called(username, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) TokenTTL() time.Duration {
	return 2 * time.Hour
}

func authRouter(svc service.AuthService, userID string) http.Handler {
	router := setupRouter()
	NewAuthHandler(svc, discardLogger).RegisterRoutes(router.Group("/api/auth"), fakeGuard(userID))
	return router
}

func TestRegister_Success(t *testing.T) {
	svc := new(MockAuthService)
	user := &models.User{ID: "u-1", Username: "winston", Email: "winston@example.com", Password: "$2a$hash"}
	svc.On("Register", "winston", "winston@example.com", "secret123").Return(user, "jwt-token", nil)

	w := doJSON(authRouter(svc, ""), http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Username: "winston", Email: "winston@example.com", Password: "secret123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, int64(7200), resp.ExpiresIn)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.NotContains(t, w.Body.String(), "$2a$hash")
	svc.AssertExpectations(t)
}

func TestRegister_ValidationError(t *testing.T) {
	svc := new(MockAuthService)

	w := doJSON(authRouter(svc, ""), http.MethodPost, "/api/auth/register", map[string]string{
		"username": "winston", "email": "not-an-email", "password": "123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Message, "email must be a valid email")
	assert.Contains(t, body.Error.Message, "password must be at least 6 characters")
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_Duplicates(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{service.ErrNameInUse, "USERNAME_TAKEN"},
		{service.ErrEmailInUse, "EMAIL_TAKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := new(MockAuthService)
			svc.On("Register", "winston", "winston@example.com", "secret123").Return(nil, "", tt.err)

			w := doJSON(authRouter(svc, ""), http.MethodPost, "/api/auth/register", dto.RegisterRequest{
				Username: "winston", Email: "winston@example.com", Password: "secret123",
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	svc := new(MockAuthService)
	user := &models.User{ID: "u-1", Username: "winston", Email: "winston@example.com"}
	svc.On("Login", "winston@example.com", "secret123").Return(user, "jwt-token", nil)

	w := doJSON(authRouter(svc, ""), http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email: "winston@example.com", Password: "secret123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"jwt-token"`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", "winston@example.com", "wrong").Return(nil, "", service.ErrInvalidCredentials)

	w := doJSON(authRouter(svc, ""), http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email: "winston@example.com", Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, w).Error.Code)
}

func TestLogin_StoreFailureIsHidden(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", "winston@example.com", "secret123").Return(nil, "", errors.New("pq: connection reset"))

	w := doJSON(authRouter(svc, ""), http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email: "winston@example.com", Password: "secret123",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Server Error", body.Error.Message)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestMe(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("CurrentUser", "u-1").Return(&models.User{ID: "u-1", Username: "winston"}, nil)
	svc.On("CurrentUser", "gone").Return(nil, service.ErrUserNotFound)

	w := doJSON(authRouter(svc, "u-1"), http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"winston"`)

	w = doJSON(authRouter(svc, "gone"), http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Error.Code)
}
