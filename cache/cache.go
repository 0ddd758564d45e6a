package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds entries held before LRU eviction kicks in.
	DefaultCapacity = 1000

	// DefaultResultTTL is how long a search result set stays servable.
	DefaultResultTTL = 5 * time.Minute

	// DefaultAnswerTTL is how long a generated answer stays servable.
	// Shorter than results: phrasing staleness is more visible to users
	// than listing staleness.
	DefaultAnswerTTL = 2 * time.Minute
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Cache is a fixed-capacity cache with per-entry TTL and LRU eviction.
// A successful Get moves the entry to the front of the recency list but
// leaves its expiry untouched. Expired entries are dropped lazily on access.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	items    map[string]*list.Element
	now      func() time.Time
}

// CacheOption customizes cache construction.
type CacheOption[V any] func(*Cache[V])

// WithCapacity overrides the default entry capacity.
func WithCapacity[V any](n int) CacheOption[V] {
	return func(c *Cache[V]) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock injects a time source. Used by tests to control expiry.
func WithClock[V any](now func() time.Time) CacheOption[V] {
	return func(c *Cache[V]) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache holding entries for ttl, evicting least recently
// used entries beyond capacity.
func New[V any](ttl time.Duration, opts ...CacheOption[V]) *Cache[V] {
	c := &Cache[V]{
		capacity: DefaultCapacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and unexpired.
// A hit refreshes the entry's recency but not its TTL.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if !c.now().Before(ent.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return ent.value, true
}

// Set stores value under key, resetting its TTL. When the cache is at
// capacity the least recently used entry is evicted first.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

func (c *Cache[V]) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	delete(c.items, ent.key)
	c.order.Remove(elem)
}
