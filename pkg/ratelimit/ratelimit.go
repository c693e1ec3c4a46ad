// Package ratelimit provides a fixed-window rate limiter with pluggable
// storage. The server uses it to cap anonymous session creation per client IP.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoreRequired   = errors.New("ratelimit: store is required")
	ErrInvalidLimit    = errors.New("ratelimit: limit must be positive")
	ErrInvalidInterval = errors.New("ratelimit: interval must be positive")
	ErrKeyRequired     = errors.New("ratelimit: key is required")
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the counter backend. Increment must be atomic: concurrent calls
// for the same key may never produce the same count.
type Store interface {
	// Increment adds one to the counter for key, creating it with the given
	// window TTL when absent, and returns the new count and remaining TTL.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// Reset removes the counter for key.
	Reset(ctx context.Context, key string) error
}

// Limiter allows up to limit requests per fixed window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// NewLimiter creates a fixed-window limiter.
func NewLimiter(store Store, limit int, window time.Duration) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Limiter{store: store, limit: limit, window: window}, nil
}

// Allow consumes one slot for key and reports whether the request is within
// the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = l.window
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Reset(ctx, key)
}
