package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const (
	keyPrefix    = "ratelimit:"    // Counter key: ratelimit:{session}:{bucket}
	bucketLayout = "200601021504"  // Minute-granularity fixed window
	bucketTTL    = 2 * time.Minute // Keep the bucket a little past its window
	DefaultLimit = 100             // Requests per minute per session
)

// Store is the shared counter state behind the limiter. Incr must atomically
// increment the counter at key, creating it with the given ttl when absent,
// and return the post-increment count.
type Store interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Result carries the outcome of one limiter check plus the header values the
// response must expose regardless of outcome.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     int64 // epoch seconds of the next minute boundary
}

// Limiter is a fixed-window request counter keyed by client session.
type Limiter struct {
	store Store
	limit int
	now   func() time.Time
}

type Option func(*Limiter)

// WithClock overrides the limiter's clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(store Store, limit int, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := &Limiter{store: store, limit: limit, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one request for the session in the current minute bucket. The
// first request of a bucket initializes the counter to 1 and is allowed; every
// later request is allowed iff the post-increment count stays within the limit.
func (l *Limiter) Allow(ctx context.Context, sessionID string) (Result, error) {
	now := l.now()
	key := fmt.Sprintf("%s%s:%s", keyPrefix, sessionID, now.Format(bucketLayout))

	count, err := l.store.Incr(ctx, key, bucketTTL)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit incr: %w", err)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     now.Truncate(time.Minute).Add(time.Minute).Unix(),
	}, nil
}
