package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a process-local domain.KVStore. Leases taken through it
// only exclude goroutines of the same process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// lookup returns a live entry, dropping it if expired. Caller holds mu.
func (s *MemoryStore) lookup(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	return e
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	return e.value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.entry(value, ttl)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.entries[key] = s.entry(value, ttl)
	return true, nil
}

func (s *MemoryStore) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok || e.value != value {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
