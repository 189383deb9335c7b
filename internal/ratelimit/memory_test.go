package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance time explicitly.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(clock *fakeClock) *MemoryStore {
	return NewMemoryStoreWithClock(clock.Now)
}

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := newTestStore(newFakeClock())

	count, _, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Get() count = %v, want 0", count)
	}
}

func TestMemoryStore_Increment(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, expiry, err := s.Increment(ctx, "k", time.Minute)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if count != want {
			t.Errorf("Increment() count = %v, want %v", count, want)
		}
		if !expiry.Equal(clock.Now().Add(time.Minute)) {
			t.Errorf("Increment() expiry = %v, want %v", expiry, clock.Now().Add(time.Minute))
		}
	}

	count, _, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Get() count = %v, want 3", count)
	}
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock)
	ctx := context.Background()

	if _, _, err := s.Increment(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}

	clock.Advance(61 * time.Second)

	count, _, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Get() count after expiry = %v, want 0", count)
	}

	// A fresh increment restarts the counter at 1.
	count, _, err = s.Increment(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Increment() count after expiry = %v, want 1", count)
	}
}

func TestMemoryStore_ResetOnHitSlidesWindow(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock)
	ctx := context.Background()

	if _, _, err := s.Increment(ctx, "k", time.Minute); err != nil {
		t.Fatal(err)
	}

	// 40s later the original window would have 20s left; a new hit must push
	// the expiry a full window out and keep the accumulated count.
	clock.Advance(40 * time.Second)
	count, expiry, err := s.Increment(ctx, "k", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %v, want 2", count)
	}
	if !expiry.Equal(clock.Now().Add(time.Minute)) {
		t.Errorf("expiry = %v, want %v", expiry, clock.Now().Add(time.Minute))
	}
}

func TestMemoryStore_CleanupReclaimsExpired(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock)
	s.cleanupInterval = time.Minute
	ctx := context.Background()

	if _, _, err := s.Increment(ctx, "stale", time.Second); err != nil {
		t.Fatal(err)
	}

	clock.Advance(2 * time.Minute)

	// Any access past the cleanup interval triggers the sweep.
	if _, _, err := s.Get(ctx, "other"); err != nil {
		t.Fatal(err)
	}

	s.mu.Lock()
	_, exists := s.entries["stale"]
	s.mu.Unlock()
	if exists {
		t.Error("expired entry survived cleanup")
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				if _, _, err := s.Increment(ctx, "shared", time.Minute); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	count, _, err := s.Get(ctx, "shared")
	if err != nil {
		t.Fatal(err)
	}
	if count != goroutines*perGoroutine {
		t.Errorf("count = %v, want %v (lost updates)", count, goroutines*perGoroutine)
	}
}
