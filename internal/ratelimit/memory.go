package ratelimit

import (
	"context"
	"sync"
	"time"
)

// defaultCleanupInterval bounds how often the amortized sweep of expired
// entries may run. Lazy expiry in Get/Increment keeps the counters correct
// without it; the sweep only reclaims memory.
const defaultCleanupInterval = time.Hour

type entry struct {
	count  int64
	expiry time.Time
}

// MemoryStore is an in-process Store backed by a mutex-guarded map. Counter
// state is local to the process and not shared across replicas; use
// RedisStore when a single shared budget is needed.
type MemoryStore struct {
	mu              sync.Mutex
	entries         map[string]entry
	cleanupInterval time.Duration
	lastCleanup     time.Time

	// now is override-able in tests.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a MemoryStore reading time from now
// instead of the wall clock. Tests use it to drive window expiry.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries:         make(map[string]entry),
		cleanupInterval: defaultCleanupInterval,
		lastCleanup:     now(),
		now:             now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeCleanup(now)

	e, ok := s.entries[key]
	if !ok || !e.expiry.After(now) {
		return 0, time.Time{}, nil
	}
	return e.count, e.expiry, nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeCleanup(now)

	var count int64
	if e, ok := s.entries[key]; ok && e.expiry.After(now) {
		count = e.count
	}
	count++

	expiry := now.Add(window)
	s.entries[key] = entry{count: count, expiry: expiry}
	return count, expiry, nil
}

// maybeCleanup discards expired entries at most once per cleanupInterval.
// Callers must hold s.mu.
func (s *MemoryStore) maybeCleanup(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	for key, e := range s.entries {
		if !e.expiry.After(now) {
			delete(s.entries, key)
		}
	}
	s.lastCleanup = now
}
