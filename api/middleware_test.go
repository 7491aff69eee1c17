package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, key string) (*domain.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestTokenKey(t *testing.T) {
	tests := []struct {
		header string
		key    string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Token abc", "abc", true},
		{"bearer  abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		key, ok := tokenKey(tt.header)
		assert.Equal(t, tt.key, key, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}

func TestAuthenticate_StoresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authn := &MockAuthenticator{}
	user := &domain.User{ID: 3, IsActive: true}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/bookings", nil)
	c.Request.Header.Set("Authorization", "Token key123")
	authn.On("Authenticate", c.Request.Context(), "key123").Return(user, nil)

	Authenticate(authn)(c)

	assert.False(t, c.IsAborted())
	assert.Same(t, user, currentUser(c))
	authn.AssertExpectations(t)
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		user   *domain.User
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"regular user", &domain.User{ID: 1}, http.StatusForbidden},
		{"staff", &domain.User{ID: 2, IsStaff: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/flights", nil)
			if tt.user != nil {
				c.Set(ctxUser, tt.user)
			}

			RequireStaff()(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status != http.StatusOK, c.IsAborted())
		})
	}
}

func TestRequireSuperuser_NeedsStaffToo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/flights/1", nil)
	c.Set(ctxUser, &domain.User{ID: 1, IsSuperuser: true})

	RequireSuperuser()(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWriteError_Unclassified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"InternalServerError","error_description":"An unknown error occurred."}`, w.Body.String())
	assert.Len(t, c.Errors, 1)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(quietLogger()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(headerRequestID), 36)
}
