// Package cache provides a per-key TTL cache used to front balance and
// price lookups. Expiry is lazy: a stale entry is evicted on the read that
// observes it, there is no background sweep.
package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time; injectable so expiry is testable without
// real waits.
type Clock func() time.Time

// TTL is a generic cache with per-entry time-to-live.
type TTL[T any] struct {
	mu      sync.Mutex
	now     Clock
	entries map[string]entry[T]
}

type entry[T any] struct {
	data     T
	storedAt time.Time
	ttl      time.Duration
}

// Option configures a TTL cache.
type Option[T any] func(*TTL[T])

// WithClock sets a custom clock.
func WithClock[T any](now Clock) Option[T] {
	return func(c *TTL[T]) {
		c.now = now
	}
}

// New creates an empty cache.
func New[T any](opts ...Option[T]) *TTL[T] {
	c := &TTL[T]{
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value iff now - storedAt <= ttl. An expired entry
// is deleted and reported as a miss.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(e.storedAt) > e.ttl {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.data, true
}

// Set stores a value unconditionally, overwriting any previous entry.
func (c *TTL[T]) Set(key string, data T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{data: data, storedAt: c.now(), ttl: ttl}
}

// Clear wipes every entry.
func (c *TTL[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// Len reports the number of stored entries, expired or not.
func (c *TTL[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
