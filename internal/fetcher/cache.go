package fetcher

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes fetch results for the lifetime of a run. Concurrent misses on
// the same key share one call; errors are never cached.
type Cache struct {
	data  sync.Map
	group singleflight.Group
}

func NewCache() *Cache {
	return &Cache{}
}

// Do returns the cached value for key or computes it with fn.
func (c *Cache) Do(key string, fn func() (any, error)) (any, error) {
	if v, ok := c.data.Load(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.data.Load(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.data.Store(key, v)
		return v, nil
	})
	return v, err
}
