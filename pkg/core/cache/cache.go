package cache

import (
	"sync"
	"sync/atomic"
)

// Entry represents a cached item
type Entry[V any] struct {
	Value V
	seq   uint64
}

// Cache is a thread-safe in-memory memo table keyed by string.
// It never expires entries on its own; callers invalidate explicitly with
// Clear. When MaxItems is set the oldest inserted entry is evicted first.
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*Entry[V]
	maxItems int
	seq      uint64

	// Metrics
	hits          atomic.Int64
	misses        atomic.Int64
	evictions     atomic.Int64
	invalidations atomic.Int64
}

// Config holds cache configuration
type Config struct {
	// MaxItems bounds the number of entries; 0 means unbounded
	MaxItems int
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{MaxItems: 0}
}

// Stats is a point-in-time snapshot of cache metrics
type Stats struct {
	Size          int
	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64
}

// HitRate returns the hit percentage, 0 when nothing was looked up
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// New creates a new cache instance
func New[V any](cfg Config) *Cache[V] {
	if cfg.MaxItems < 0 {
		cfg.MaxItems = 0
	}
	return &Cache[V]{
		items:    make(map[string]*Entry[V]),
		maxItems: cfg.MaxItems,
	}
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	return entry.Value, true
}

// Set stores a value in the cache, replacing any previous entry
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.seq++
	c.items[key] = &Entry[V]{Value: value, seq: c.seq}
}

// Clear removes all items from the cache and returns how many were dropped
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[string]*Entry[V])
	c.invalidations.Add(1)
	return n
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Size:          c.Size(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		Invalidations: c.invalidations.Load(),
	}
}

// evictOldest removes the oldest entry (must be called with lock held)
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestSeq uint64
	found := false

	for key, entry := range c.items {
		if !found || entry.seq < oldestSeq {
			oldestKey = key
			oldestSeq = entry.seq
			found = true
		}
	}

	if found {
		delete(c.items, oldestKey)
		c.evictions.Add(1)
	}
}

// GetOrSet returns the cached value for key or computes, stores and
// returns it. Errors from fn are returned and nothing is stored.
func (c *Cache[V]) GetOrSet(key string, fn func() (V, error)) (V, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, val)
	return val, nil
}
