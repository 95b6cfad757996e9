package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultSize = 16
	DefaultTTL  = 60 * time.Second
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a small LRU whose entries expire ttl after they were stored.
type TTL[V any] struct {
	items *lru.Cache[string, entry[V]]
	ttl   time.Duration
	now   func() time.Time
}

// New returns a TTL cache. Zero size or ttl fall back to the defaults; a nil
// clock uses time.Now.
func New[V any](size int, ttl time.Duration, now func() time.Time) (*TTL[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	items, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &TTL[V]{items: items, ttl: ttl, now: now}, nil
}

// Get returns the live value for key. Expired entries are evicted.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.items.Remove(key)
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	c.items.Add(key, entry[V]{value: value, storedAt: c.now()})
}

func (c *TTL[V]) Invalidate(key string) {
	c.items.Remove(key)
}

// Purge drops every entry.
func (c *TTL[V]) Purge() {
	c.items.Purge()
}

func (c *TTL[V]) TTL() time.Duration { return c.ttl }
