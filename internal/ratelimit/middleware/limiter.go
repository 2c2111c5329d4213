package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"webfinger/internal/ratelimit/models"
)

// BucketStore is a sliding window counter keyed by string.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter applies one per-IP limit against a primary store and, when the
// primary keeps failing, an in-memory fallback.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *CircuitBreaker
	logger   *slog.Logger
	limit    int
	window   time.Duration
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithFallback sets the store used while the primary's circuit is open.
func WithFallback(store BucketStore) LimiterOption {
	return func(l *Limiter) {
		l.fallback = store
	}
}

// WithLogger reports breaker transitions between the primary and fallback.
func WithLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// NewLimiter builds a Limiter allowing limit requests per window per IP.
func NewLimiter(primary BucketStore, limit int, window time.Duration, opts ...LimiterOption) (*Limiter, error) {
	if primary == nil {
		return nil, errors.New("bucket store is required")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("limit and window must be positive")
	}
	l := &Limiter{
		primary: primary,
		breaker: newCircuitBreaker(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		limit:   limit,
		window:  window,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// CheckIP consumes one request for ip. degraded is true when the answer came
// from the fallback store.
func (l *Limiter) CheckIP(ctx context.Context, ip string) (result *models.RateLimitResult, degraded bool, err error) {
	key := models.IPKey(ip)

	wasOpen := l.breaker.IsOpen()
	result, err = l.primary.Allow(ctx, key, l.limit, l.window)
	if err == nil {
		if closed := l.breaker.RecordSuccess(); wasOpen && closed {
			l.logger.InfoContext(ctx, "rate limit store recovered, fallback released")
		}
		return result, false, nil
	}

	open := l.breaker.RecordFailure()
	if open && !wasOpen {
		l.logger.WarnContext(ctx, "rate limit store failing, circuit opened",
			"error", err,
			"fallback", l.fallback != nil,
		)
	}
	if !open || l.fallback == nil {
		return nil, false, err
	}

	result, err = l.fallback.Allow(ctx, key, l.limit, l.window)
	if err != nil {
		return nil, true, err
	}
	return result, true, nil
}
