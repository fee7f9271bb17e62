package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"bizops/internal/pkg/jwt"
	"bizops/internal/tenant"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveScope(ctx context.Context, userID uuid.UUID) (tenant.Scope, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(tenant.Scope), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := jwt.New("test-secret-123", time.Hour)
	userID := uuid.New()
	validToken, _ := jwtService.GenerateToken(userID, "owner@example.com")

	router := gin.New()
	router.Use(JWTAuth(jwtService))
	router.GET("/protected", func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})

	w := serve(router, "Bearer "+validToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestJWTAuth_Rejections(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	foreign, _ := jwt.New("other-secret", time.Hour).GenerateToken(uuid.New(), "x@example.com")
	expired, _ := jwt.New("secret", -time.Minute).GenerateToken(uuid.New(), "x@example.com")

	router := gin.New()
	router.Use(JWTAuth(jwtService))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("This handler should not be reached")
	})

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"no header", "", "AUTH_HEADER_MISSING"},
		{"wrong scheme", "Basic dGVzdA==", "INVALID_AUTH_FORMAT"},
		{"garbage", "Bearer invalid-jwt-here", "SESSION_EXPIRED"},
		{"foreign secret", "Bearer " + foreign, "SESSION_EXPIRED"},
		{"expired", "Bearer " + expired, "SESSION_EXPIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(router, tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestTenantScope(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	known, gone, broken := uuid.New(), uuid.New(), uuid.New()
	scope := tenant.New(uuid.New(), known, "GHS", "Africa/Accra")

	resolver := new(MockResolver)
	resolver.On("ResolveScope", mock.Anything, known).Return(scope, nil)
	resolver.On("ResolveScope", mock.Anything, gone).Return(tenant.Scope{}, tenant.ErrNoTenant)
	resolver.On("ResolveScope", mock.Anything, broken).Return(tenant.Scope{}, errors.New("connection refused"))

	router := gin.New()
	router.Use(JWTAuth(jwtService), TenantScope(resolver, zap.NewNop()))
	router.GET("/protected", func(c *gin.Context) {
		s, ok := tenant.FromGin(c)
		assert.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"org_id": s.OrgID})
	})

	token := func(id uuid.UUID) string {
		tok, _ := jwtService.GenerateToken(id, "x@example.com")
		return "Bearer " + tok
	}

	w := serve(router, token(known))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), scope.OrgID.String())

	w = serve(router, token(gone))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_EXPIRED")

	w = serve(router, token(broken))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resolver.AssertExpectations(t)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorLoggerRecoversPanic(t *testing.T) {
	router := gin.New()
	router.Use(ErrorLogger(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}
