package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long provider responses stay fresh.
const DefaultTTL = time.Hour

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Expiring is an in-process key/value map with per-entry TTL. Expired
// entries are dropped lazily on read or by Sweep; nothing runs in the
// background. Safe for concurrent use.
type Expiring[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	now     func() time.Time
}

// NewExpiring constructs an empty cache using the wall clock.
func NewExpiring[V any]() *Expiring[V] {
	return NewExpiringWithClock[V](time.Now)
}

// NewExpiringWithClock constructs an empty cache reading time from now (for tests).
func NewExpiringWithClock[V any](now func() time.Time) *Expiring[V] {
	return &Expiring[V]{entries: make(map[string]entry[V]), now: now}
}

// Set stores value under key until ttl elapses. A non-positive ttl uses DefaultTTL.
func (c *Expiring[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Get returns the value for key. An expired entry is removed and reported
// as a miss.
func (c *Expiring[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Delete removes key if present.
func (c *Expiring[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Expiring[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len counts stored entries, including expired ones not yet swept.
func (c *Expiring[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
