// Package clientcache caches constructed SDK clients keyed by a hash
// of their configuration, so provider services reuse one client per
// distinct config instead of rebuilding on every call.
package clientcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a type-safe client cache. Concurrent callers for the same
// key share a single factory invocation via singleflight.
type Cache[T any] struct {
	cache   sync.Map
	sfGroup singleflight.Group
}

// NewCache creates an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// GetOrCreate returns the cached client for key, building it with
// factory on first use. The factory runs at most once per key even
// under concurrent load.
func (c *Cache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.cache.Load(key); ok {
		return cached.(T), nil
	}

	v, err, _ := c.sfGroup.Do(key, func() (any, error) {
		// Re-check after winning the singleflight slot.
		if cached, ok := c.cache.Load(key); ok {
			return cached.(T), nil
		}

		client, err := factory()
		if err != nil {
			var zero T
			return zero, err
		}

		c.cache.Store(key, client)
		return client, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Delete evicts one client, forcing a rebuild on next use.
func (c *Cache[T]) Delete(key string) {
	c.cache.Delete(key)
}
