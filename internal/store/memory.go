package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and for running the
// service without a Redis backend.
type MemoryStore struct {
	mu      sync.RWMutex
	cache   map[string]memoryEntry
	storage map[string]string

	// now is swappable so tests can control TTL expiry.
	now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache:   make(map[string]memoryEntry),
		storage: make(map[string]string),
		now:     time.Now,
	}
}

// CacheGet implements Store.
func (s *MemoryStore) CacheGet(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

// CacheSet implements Store.
func (s *MemoryStore) CacheSet(_ context.Context, key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.cache[key] = entry
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.storage[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores a value in authoritative storage. Test helper; the service
// itself never writes interests.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[key] = value
}

// CacheLen reports the number of cached entries, expired or not.
func (s *MemoryStore) CacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
