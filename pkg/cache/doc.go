// Package cache provides the short-lived response cache guarding idempotent reads.
//
// Values are raw response bodies stored under a key with the time they were
// stored. An entry is servable while its age is below the TTL (five minutes by
// default). Expired entries are treated as absent on read and are never purged
// by a Get.
//
// Two backends implement Cache:
//
//   - Memory keeps entries in process
//   - Redis shares entries between processes through go-redis
//
// # Basic Usage
//
//	c := cache.NewMemory()
//
//	key := cache.Key{Endpoint: "/health"}.String()
//
//	body, err := c.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from the backend and store it
//		body = fetch()
//		_ = c.Put(ctx, key, body)
//	}
//
// # Redis Backend
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	c := cache.NewRedis(redisClient, cache.WithTTL(2*time.Minute))
//
// # Metrics
//
//   - twin_cache_hits_total{backend} - Cache hits
//   - twin_cache_misses_total{backend} - Cache misses, expired entries included
//   - twin_cache_entries{backend} - Entries held by the memory backend
//   - twin_cache_errors_total{backend,operation} - Backend failures
//
// # Consistency
//
// Writes are last-writer-wins. A Put racing a Get on the same key may let the
// Get observe either value. Never cache calls whose result must reflect an
// immediately preceding write.
package cache
