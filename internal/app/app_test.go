package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museumtix/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:              "test",
		HTTPAddr:            ":0",
		DatabaseURL:         ":memory:",
		AutoMigrate:         true,
		JWTSecret:           "test-secret",
		JWTTTL:              time.Hour,
		SessionTTL:          time.Hour,
		LLM:                 config.LLMConfig{Timeout: time.Second},
		TicketSigningSecret: "ticket-secret",
		PendingBookingTTL:   30 * time.Minute,
		ExpiryInterval:      time.Minute,
		ChatRatePerMinute:   10,
	}
}

func TestNew_WiresRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(a.close)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/museums", http.StatusOK},
		{http.MethodGet, "/api/v1/promotions", http.StatusOK},
		{http.MethodGet, "/api/v1/bookings", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/chat/messages", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/analytics", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		a.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}
