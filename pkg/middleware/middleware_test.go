package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, limit int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := DefaultRateLimitConfig("test")
	cfg.Limit = limit
	limiter := NewRateLimiter(client, cfg)
	limiter.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC) }

	router := gin.New()
	router.Use(SecurityHeaders(), limiter.Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/recipes", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router, mr
}

func doGet(router *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	router, _ := setupLimiter(t, 3)

	for i := 0; i < 3; i++ {
		w := doGet(router, "/api/recipes", "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doGet(router, "/api/recipes", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	router, _ := setupLimiter(t, 1)

	assert.Equal(t, http.StatusOK, doGet(router, "/api/recipes", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "/api/recipes", "10.0.0.1").Code)

	w := doGet(router, "/api/recipes", "10.0.0.2, 172.16.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiter_SkipsHealth(t *testing.T) {
	router, _ := setupLimiter(t, 1)

	for i := 0; i < 5; i++ {
		w := doGet(router, "/health", "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	router, mr := setupLimiter(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "/api/recipes", "10.0.0.1").Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	router, _ := setupLimiter(t, 10)

	w := doGet(router, "/api/recipes", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
}
