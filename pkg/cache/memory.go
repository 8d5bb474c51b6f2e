package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Cache. Entries are only ever replaced, never
// evicted; the key space is expected to stay small.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	settings
}

// NewMemory creates an empty in-process cache.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		entries:  make(map[string]Entry),
		settings: newSettings(opts),
	}
}

// Get retrieves the value stored under key.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !entry.Fresh(m.now(), m.ttl) {
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(backendMemory).Inc()
	return clone(entry.Value), nil
}

// Put stores value under key.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	entry := Entry{Value: clone(value), StoredAt: m.now()}

	m.mu.Lock()
	_, existed := m.entries[key]
	m.entries[key] = entry
	m.mu.Unlock()

	if !existed {
		CacheEntries.WithLabelValues(backendMemory).Inc()
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// TTL returns the freshness window.
func (m *Memory) TTL() time.Duration {
	return m.ttl
}
