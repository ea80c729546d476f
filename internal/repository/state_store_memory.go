package repository

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memEntry) isExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

type memoryStateStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStateStore() StateStore {
	return newMemoryStateStore(time.Now)
}

func newMemoryStateStore(now func() time.Time) *memoryStateStore {
	return &memoryStateStore{
		entries: make(map[string]memEntry),
		now:     now,
	}
}

func (s *memoryStateStore) SetEx(_ context.Context, key string, ttl time.Duration, value []byte) (bool, error) {
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: buf, expiresAt: s.now().Add(ttl)}
	return true, nil
}

func (s *memoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if entry.isExpired(s.now()) {
		s.evict(key)
		return nil, nil
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (s *memoryStateStore) Del(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for _, key := range keys {
		entry, ok := s.entries[key]
		if !ok {
			continue
		}
		if !entry.isExpired(now) {
			n++
		}
		delete(s.entries, key)
	}
	return n, nil
}

func (s *memoryStateStore) Ping(_ context.Context) error {
	return nil
}

// evict drops key only if it is still expired; a concurrent SetEx may have
// replaced it between the read and write locks.
func (s *memoryStateStore) evict(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok && entry.isExpired(s.now()) {
		delete(s.entries, key)
	}
}
