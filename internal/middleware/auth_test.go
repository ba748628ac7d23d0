package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/jwt"
)

func init() { gin.SetMode(gin.TestMode) }

type stubVerifier struct {
	token string
}

func (s stubVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	if token != s.token {
		return nil, errors.New("bad token")
	}
	return &Principal{UserID: "fb-uid", Role: "visitor", Email: "fb@example.com"}, nil
}

func protectedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/protected", func(c *gin.Context) {
		p := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	return router
}

func get(router *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := jwt.New("test-secret-123", time.Hour)
	validToken, _ := jwtService.GenerateToken("user-42", "staff", "s@example.com")

	w := get(protectedRouter(JWTAuth(jwtService, nil)), validToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
	assert.Contains(t, w.Body.String(), "staff")
}

func TestJWTAuth_InvalidAndMissingToken(t *testing.T) {
	router := protectedRouter(JWTAuth(jwt.New("wrong-secret", time.Hour), nil))

	w := get(router, "invalid-jwt-here")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = get(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuth_ExternalVerifierFallback(t *testing.T) {
	router := protectedRouter(JWTAuth(jwt.New("s", time.Hour), stubVerifier{token: "firebase-id-token"}))

	w := get(router, "firebase-id-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fb-uid")
}

func TestRequireRole(t *testing.T) {
	jwtService := jwt.New("s", time.Hour)
	visitor, _ := jwtService.GenerateToken("u1", "visitor", "")
	admin, _ := jwtService.GenerateToken("u2", "admin", "")
	router := protectedRouter(JWTAuth(jwtService, nil), RequireRole(domain.RoleStaff, domain.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, get(router, visitor).Code)
	assert.Equal(t, http.StatusOK, get(router, admin).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(4)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"))

	now = now.Add(16 * time.Second)
	assert.True(t, rl.Allow("u1"))
}

func TestErrorLogger_RecoversPanic(t *testing.T) {
	router := gin.New()
	router.Use(ErrorLogger(false))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://tickets.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://tickets.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://tickets.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
