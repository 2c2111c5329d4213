package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webfinger/internal/ratelimit/models"
	"webfinger/internal/ratelimit/store/bucket"
	"webfinger/pkg/requestcontext"
)

type stubLimiter struct {
	result   *models.RateLimitResult
	degraded bool
	err      error
	calls    int
}

func (s *stubLimiter) CheckIP(ctx context.Context, ip string) (*models.RateLimitResult, bool, error) {
	s.calls++
	return s.result, s.degraded, s.err
}

type rejectionCounter int

func (c *rejectionCounter) IncrementRateLimitRejections() { *c++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/.well-known/webfinger", nil)
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, ""))
}

func TestRateLimitWithMemoryStore(t *testing.T) {
	limiter, err := NewLimiter(bucket.New(), 3, time.Minute)
	require.NoError(t, err)
	var rejected rejectionCounter
	h := New(limiter, discardLogger(), WithRecorder(&rejected)).RateLimit(okHandler())

	for i := range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.0.2.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, []string{"2", "1", "0"}[i], rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate_limit_exceeded","message":"Too many requests from this IP","retry_after":60}`, rec.Body.String())
	assert.Equal(t, rejectionCounter(1), rejected)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.2"))
	assert.Equal(t, http.StatusOK, rec.Code, "other IPs have their own bucket")
}

func TestRateLimitFailsOpen(t *testing.T) {
	stub := &stubLimiter{err: errors.New("store unavailable")}
	h := New(stub, discardLogger()).RateLimit(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitDegradedHeader(t *testing.T) {
	stub := &stubLimiter{
		result:   &models.RateLimitResult{Allowed: true, Limit: 100, Remaining: 10, ResetAt: time.Now()},
		degraded: true,
	}
	h := New(stub, discardLogger()).RateLimit(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", rec.Header().Get("X-RateLimit-Status"))
}

func TestRateLimitDisabled(t *testing.T) {
	stub := &stubLimiter{}
	h := New(stub, discardLogger(), WithDisabled(true)).RateLimit(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, stub.calls)
}
