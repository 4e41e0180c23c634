package ttlcache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a single-process TTL cache keyed by string. Expiry is checked
// lazily on read; an expired entry is treated as absent and removed on
// access. It is an optimization, never a correctness boundary: callers
// must always be able to recompute misses from the source of truth.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
}

func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// NewWithClock allows deterministic expiry in tests.
func NewWithClock[T any](now func() time.Time) *Cache[T] {
	c := New[T]()
	if now != nil {
		c.now = now
	}
	return c
}

func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.entries[key]
	if ok && c.now().Before(item.expiresAt) {
		return item.value, true
	}
	delete(c.entries, key)
	var zero T
	return zero, false
}

func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}
