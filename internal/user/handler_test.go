package user

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
)

type MockService struct{ mock.Mock }

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LoginResponse), args.Error(1)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LoginResponse), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RefreshResponse), args.Error(1)
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.GET("/me", func(c *gin.Context) {
		auth.SetIdentity(c, 3, auth.RoleMember)
		c.Next()
	}, h.Me)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, RegisterRequest{Name: "Dana", Email: "dana@example.com", Password: "password123"}).
		Return(&LoginResponse{TokenPair: auth.TokenPair{AccessToken: "a", RefreshToken: "r"}, User: User{ID: 1}}, nil).Once()
	svc.On("Register", mock.Anything, RegisterRequest{Name: "Dana", Email: "taken@example.com", Password: "password123"}).
		Return(nil, ErrEmailExists).Once()
	r := newTestRouter(NewHandler(svc))

	w := post(r, "/auth/register", `{"name":"Dana","email":"dana@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"a"`)

	w = post(r, "/auth/register", `{"name":"Dana","email":"taken@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(r, "/auth/register", `{"name":"Dana","email":"not-an-email","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	svc.AssertExpectations(t)
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, ErrInvalidCredentials)

	w := post(newTestRouter(NewHandler(svc)), "/auth/login", `{"email":"dana@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Refresh_Expired(t *testing.T) {
	svc := new(MockService)
	svc.On("Refresh", mock.Anything, "stale").Return(nil, auth.ErrTokenExpired)

	w := post(newTestRouter(NewHandler(svc)), "/auth/refresh", `{"refresh_token":"stale"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Me(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, 3).Return(&User{ID: 3, Name: "Dana", PasswordHash: "secret"}, nil)

	w := httptest.NewRecorder()
	newTestRouter(NewHandler(svc)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")

	svc2 := new(MockService)
	svc2.On("GetByID", mock.Anything, 3).Return(nil, apperr.ErrNotFound)
	w = httptest.NewRecorder()
	newTestRouter(NewHandler(svc2)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
