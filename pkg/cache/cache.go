package cache

import (
	"errors"
	"sync"
)

// ErrEmptyKey is returned when a caller passes an empty cache key.
var ErrEmptyKey = errors.New("cache: key cannot be empty")

// Cache is a thread-safe in-memory cache with no eviction policy.
// It stores items until explicitly deleted or cleared. The cache is
// parameterized by value type V for type safety.
type Cache[V any] struct {
	mu      sync.RWMutex
	items   map[string]V
	stats   *Statistics
	metrics *cacheMetrics
}

// Option configures cache behavior using the functional options pattern.
type Option func(*cacheOptions)

type cacheOptions struct {
	registerer prometheusRegisterer
	prefix     string
}

// WithMetrics enables Prometheus metrics export for cache statistics.
// If registerer is nil or prefix is empty, the option is ignored.
func WithMetrics(registerer prometheusRegisterer, prefix string) Option {
	return func(opts *cacheOptions) {
		if registerer != nil && prefix != "" {
			opts.registerer = registerer
			opts.prefix = prefix
		}
	}
}

// New creates a cache instance. Returns an error only if metrics
// registration fails when requested.
func New[V any](options ...Option) (*Cache[V], error) {
	opts := &cacheOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	var metrics *cacheMetrics
	if opts.registerer != nil {
		var err error
		metrics, err = newCacheMetrics(opts.registerer, opts.prefix)
		if err != nil {
			return nil, err
		}
	}

	return &Cache[V]{
		items:   make(map[string]V),
		stats:   NewStatistics(),
		metrics: metrics,
	}, nil
}

// Get retrieves a value by key. Returns the value and true if found,
// zero value and false otherwise.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	value, exists := c.items[key]
	c.mu.RUnlock()

	if exists {
		c.stats.Hit()
		if c.metrics != nil {
			c.metrics.recordHit()
		}
	} else {
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
	}
	return value, exists
}

// Set stores a value with the given key. Returns true if a new entry was
// created, false if an existing one was replaced.
func (c *Cache[V]) Set(key string, value V) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	c.mu.Lock()
	_, exists := c.items[key]
	c.items[key] = value
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.recordSet()
		c.metrics.updateSize(size)
	}
	return !exists, nil
}

// Delete removes an entry by key. Returns true if the key existed.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	_, exists := c.items[key]
	delete(c.items, key)
	size := len(c.items)
	c.mu.Unlock()

	if exists {
		c.stats.Delete()
		c.stats.UpdateSize(int64(size))
		if c.metrics != nil {
			c.metrics.recordDelete()
			c.metrics.updateSize(size)
		}
	}
	return exists
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]V)
	c.mu.Unlock()

	c.stats.UpdateSize(0)
	if c.metrics != nil {
		c.metrics.updateSize(0)
	}
}

// Size returns the current number of entries in the cache.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns a slice of all keys currently in the cache.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns the cache statistics tracker.
func (c *Cache[V]) Stats() *Statistics {
	return c.stats
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. Concurrent callers may race to compute; the last writer wins,
// which is acceptable because computed values for one key are
// deterministic.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	if _, setErr := c.Set(key, v); setErr != nil {
		var zero V
		return zero, setErr
	}
	return v, nil
}
