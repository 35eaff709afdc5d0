package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/focusflow/focusflow-api/internal/constants"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	results []*Result
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (*Result, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return nil, s.err
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result, nil
}

func newRouter(limiter Limiter, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router.POST("/generate", func(c *gin.Context) {
		if userID != "" {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	}, Middleware(limiter, 2, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"content": "ok"})
	})
	return router
}

func TestMiddleware_AllowsThenRejects(t *testing.T) {
	limiter := &stubLimiter{results: []*Result{
		{Allowed: true, Remaining: 1, ResetAt: time.Now().Add(time.Minute)},
		{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(time.Minute), RetryAfter: 1500 * time.Millisecond},
	}}
	router := newRouter(limiter, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	assert.Equal(t, []string{"user:user-1", "user:user-1"}, limiter.keys)
}

func TestMiddleware_FallsBackToClientIP(t *testing.T) {
	limiter := &stubLimiter{results: []*Result{{Allowed: true, Remaining: 1}}}
	router := newRouter(limiter, "")

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ip:203.0.113.7"}, limiter.keys)
}

func TestMiddleware_FailsOpen(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	router := newRouter(limiter, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
