package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryProvider is a process-local Provider with per-key TTL expiry.
// Expired entries are dropped lazily on read.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string]entry
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryProvider creates an empty in-memory cache.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string]entry)}
}

// Get returns the cached bytes or ErrCacheMiss when absent or expired.
func (m *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set stores a copy of value; a zero ttl means no expiry.
func (m *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	stored := append([]byte(nil), value...)

	m.mu.Lock()
	m.data[key] = entry{value: stored, expiresAt: expires}
	m.mu.Unlock()
	return nil
}

// Del removes an entry.
func (m *MemoryProvider) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Close clears the cache.
func (m *MemoryProvider) Close() error {
	m.mu.Lock()
	m.data = make(map[string]entry)
	m.mu.Unlock()
	return nil
}
