// Package cache implements the in-process read-through cache fronting
// resource reads: about://server, about://policies, and instructions://agent
// are deterministic snapshots of immutable startup config, so a short-TTL
// cache is safe and never touches budget/rate/policy state.
package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache wraps a ristretto cache as an in-process L1 cache for resource
// read bodies, keyed by URI (optionally scoped with an agent ID).
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a ristretto-backed cache. maxCostBytes is the maximum total
// size of cached values in bytes.
func New(maxCostBytes int64) (*Cache, error) {
	if maxCostBytes <= 0 {
		maxCostBytes = 1 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get retrieves a cached resource body.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false
	}
	return val, true
}

// Set stores a resource body with the given TTL.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	c.c.Wait()
}

// Delete evicts a cached entry, used when an agent's snapshot changes
// within a process lifetime (never happens today since config is
// immutable after load, but kept for an eventual hot-reload path).
func (c *Cache) Delete(_ context.Context, key string) {
	c.c.Del(key)
}

// Close releases the cache's background resources.
func (c *Cache) Close() {
	c.c.Close()
}
