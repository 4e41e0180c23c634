package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestIncrWindowCountsWithinWindow(t *testing.T) {
	now := time.Now()
	store := NewStoreWithClock(func() time.Time { return now })

	for i := int64(1); i <= 3; i++ {
		state, err := store.IncrWindow(context.Background(), "rate-limit:k", time.Minute)
		if err != nil {
			t.Fatalf("incr %d failed: %v", i, err)
		}
		if state.Count != i {
			t.Fatalf("expected count %d, got %d", i, state.Count)
		}
		if state.TTL <= 0 || state.TTL > time.Minute {
			t.Fatalf("expected ttl within window, got %s", state.TTL)
		}
	}
}

func TestIncrWindowResetsAfterExpiry(t *testing.T) {
	now := time.Now()
	store := NewStoreWithClock(func() time.Time { return now })

	if _, err := store.IncrWindow(context.Background(), "rate-limit:k", time.Minute); err != nil {
		t.Fatalf("incr failed: %v", err)
	}

	now = now.Add(time.Minute + time.Second)
	state, err := store.IncrWindow(context.Background(), "rate-limit:k", time.Minute)
	if err != nil {
		t.Fatalf("incr after expiry failed: %v", err)
	}
	if state.Count != 1 {
		t.Fatalf("expected fresh window count 1, got %d", state.Count)
	}
}

func TestIncrWindowConcurrentSingleWindow(t *testing.T) {
	store := NewStore()

	const workers = 32
	var wg sync.WaitGroup
	counts := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := store.IncrWindow(context.Background(), "rate-limit:k", time.Minute)
			if err != nil {
				t.Errorf("incr failed: %v", err)
				return
			}
			counts <- state.Count
		}()
	}
	wg.Wait()
	close(counts)

	seen := make(map[int64]bool)
	for count := range counts {
		if seen[count] {
			t.Fatalf("count %d observed twice, window was re-armed mid-flight", count)
		}
		seen[count] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct counts, got %d", workers, len(seen))
	}
	if !seen[int64(workers)] {
		t.Fatalf("expected final count %d to be observed", workers)
	}
}

func TestPeekDoesNotMutate(t *testing.T) {
	now := time.Now()
	store := NewStoreWithClock(func() time.Time { return now })

	if _, err := store.IncrWindow(context.Background(), "rate-limit:k", time.Minute); err != nil {
		t.Fatalf("incr failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		state, err := store.Peek(context.Background(), "rate-limit:k")
		if err != nil {
			t.Fatalf("peek failed: %v", err)
		}
		if state.Count != 1 {
			t.Fatalf("peek changed the count: %d", state.Count)
		}
	}

	empty, err := store.Peek(context.Background(), "rate-limit:absent")
	if err != nil {
		t.Fatalf("peek absent failed: %v", err)
	}
	if empty.Count != 0 || empty.TTL != 0 {
		t.Fatalf("expected zero state for absent window, got %+v", empty)
	}
}
