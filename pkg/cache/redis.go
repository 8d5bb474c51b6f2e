package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared between processes through a Redis server.
// Redis expires keys after the TTL on its own; reads additionally check the
// stored timestamp so a lagging server expiry never serves a stale value.
type Redis struct {
	redis *redis.Client
	settings
}

// NewRedis creates a cache backed by redisClient.
func NewRedis(redisClient *redis.Client, opts ...Option) *Redis {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Redis{
		redis:    redisClient,
		settings: newSettings(opts),
	}
}

// Get retrieves the value stored under key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(backendRedis).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if !entry.Fresh(r.now(), r.ttl) {
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	return entry.Value, nil
}

// Put stores value under key with the cache TTL as the Redis expiry.
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	data, err := json.Marshal(Entry{Value: value, StoredAt: r.now()})
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// TTL returns the freshness window.
func (r *Redis) TTL() time.Duration {
	return r.ttl
}
