package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a stored value stays servable.
const DefaultTTL = 5 * time.Minute

var (
	// ErrCacheMiss indicates the requested key was not found or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Cache memoizes idempotent read results for a bounded time window.
type Cache interface {
	// Get returns the value stored under key, or ErrCacheMiss when it is
	// absent or older than the TTL. Get never modifies the cache.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key with the current time, replacing any prior entry.
	Put(ctx context.Context, key string, value []byte) error
}

// Option configures a cache backend.
type Option func(*settings)

type settings struct {
	ttl time.Duration
	now func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock sets the time source used for StoredAt and freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
