// internal/pkg/cache/cache.go
package cache

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so cache expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a small in-memory cache with per-entry TTL and explicit
// invalidation keys. It replaces ambient module-level maps: every consumer
// owns its instance and wires the clock.
type TTLCache struct {
	mu      sync.RWMutex
	clock   Clock
	ttl     time.Duration
	entries map[string]entry
}

// New creates a TTLCache. A nil clock defaults to the system clock.
func New(ttl time.Duration, clock Clock) *TTLCache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TTLCache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key, or false if absent or expired.
// Expired entries are removed lazily.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.clock.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.clock.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores value under key with the cache's TTL.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate removes a single key.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidatePrefix removes every key starting with prefix. Used to drop all
// cached reports for a seller when one of their sales changes.
func (c *TTLCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
