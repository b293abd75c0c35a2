package pagecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const backendLRU = "lru"

// LRU is a per-instance page cache with TTL eviction.
type LRU struct {
	cache *expirable.LRU[string, *Page]
}

// NewLRU creates an LRU holding at most size pages for ttl each.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = 512
	}
	return &LRU{cache: expirable.NewLRU[string, *Page](size, nil, ttl)}
}

func (c *LRU) Get(_ context.Context, loc, path string) (*Page, bool) {
	page, ok := c.cache.Get(entryKey(loc, path))
	if ok {
		lookupsTotal.WithLabelValues(backendLRU, "hit").Inc()
		return page, true
	}
	lookupsTotal.WithLabelValues(backendLRU, "miss").Inc()
	return nil, false
}

func (c *LRU) Set(_ context.Context, loc, path string, page *Page) {
	c.cache.Add(entryKey(loc, path), page)
}

func (c *LRU) Invalidate(_ context.Context, path string) error {
	for _, code := range supportedCodes() {
		c.cache.Remove(entryKey(code, path))
	}
	invalidationsTotal.WithLabelValues(backendLRU).Inc()
	return nil
}

// Len reports the number of cached pages.
func (c *LRU) Len() int {
	return c.cache.Len()
}
