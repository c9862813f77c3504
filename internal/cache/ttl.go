package cache

import (
	"sync"
	"time"
)

// TTL is a small in-memory cache with expiration, generic over the value type.
// Used to keep list/search responses around between navigations.
type TTL[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl   time.Duration
}

type item[V any] struct {
	value V
	exp   time.Time
}

// New returns a TTL cache. Entries expire after the given duration.
func New[V any](ttl time.Duration) *TTL[V] {
	c := &TTL[V]{items: make(map[string]item[V]), ttl: ttl}
	go c.cleanup()
	return c
}

func (c *TTL[V]) cleanup() {
	tick := time.NewTicker(c.ttl / 2)
	defer tick.Stop()
	for range tick.C {
		c.mu.Lock()
		now := time.Now()
		for k, v := range c.items {
			if v.exp.Before(now) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}

// Get returns the value for key if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || it.exp.Before(time.Now()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores the value for key with the cache TTL.
func (c *TTL[V]) Set(key string, value V) {
	exp := time.Now().Add(c.ttl)
	c.mu.Lock()
	c.items[key] = item[V]{value: value, exp: exp}
	c.mu.Unlock()
}

// Clear removes all entries. Called after any mutation so the next list
// reflects server state.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]item[V])
	c.mu.Unlock()
}
