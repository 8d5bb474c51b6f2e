package cache

import (
	"time"
)

// Entry is a cached value and the time it was stored.
type Entry struct {
	// Value is the cached response body
	Value []byte `json:"value"`

	// StoredAt is when the value was put into the cache
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Fresh reports whether the entry is still servable under ttl.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}
