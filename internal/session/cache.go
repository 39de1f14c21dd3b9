package session

import (
	"sync"
	"time"
)

// Cache holds one value per session key. Entries expire after ttl of
// inactivity; a zero ttl keeps entries until they are deleted.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*cacheEntry[V]
}

type cacheEntry[V any] struct {
	value    V
	lastUsed time.Time
}

// NewCache creates an empty cache.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cacheEntry[V]),
	}
}

// Get returns the value for key and refreshes its last use.
// Expired entries are dropped and reported as missing.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	now := c.now()
	if c.expired(entry, now) {
		delete(c.entries, key)
		return zero, false
	}

	entry.lastUsed = now
	return entry.value, true
}

// Put stores value for key.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry[V]{value: value, lastUsed: c.now()}
}

// Delete drops the entry for key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry[V])
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache[V]) expired(entry *cacheEntry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.lastUsed) > c.ttl
}
