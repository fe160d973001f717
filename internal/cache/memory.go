package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/radassist-mcp-server/internal/domain"
)

// DefaultMaxItems bounds the in-process cache when no size is configured.
const DefaultMaxItems = 1024

// MemoryCache is an in-process, size-bounded verdict cache with per-entry expiry.
type MemoryCache struct {
	lru    *expirable.LRU[string, []byte]
	hits   atomic.Int64
	misses atomic.Int64
}

var _ domain.VerdictCache = (*MemoryCache)(nil)

// NewMemoryCache creates a memory cache. A non-positive ttl disables expiry.
func NewMemoryCache(maxItems int, ttl time.Duration) *MemoryCache {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](maxItems, nil, ttl)}
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Set stores a copy of value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.lru.Add(key, stored)
	return nil
}

// Purge drops every entry.
func (c *MemoryCache) Purge() {
	c.lru.Purge()
}

// Stats returns hit/miss counters and the current size.
func (c *MemoryCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}
