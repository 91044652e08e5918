package products

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	product Product
	expires time.Time
}

// Cache is a read-through product cache keyed by id. Concurrent misses for the
// same id share one upstream fetch. It is used for speculative fetches (the
// front end prefetches a product on hover) and for product-page reads.
type Cache struct {
	src Repository
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

var _ Repository = (*Cache)(nil)

func NewCache(src Repository, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{src: src, ttl: ttl, now: time.Now, entries: map[string]cacheEntry{}}
}

// List is not cached; search results change with every keystroke.
func (c *Cache) List(ctx context.Context, q Query) (ListResult, error) {
	return c.src.List(ctx, q)
}

// Get serves id from the cache, loading it on a miss. The shared load is not
// tied to any one caller: a caller that gives up gets its own ctx error while
// the others still receive the product.
func (c *Cache) Get(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if p, ok := c.lookup(id); ok {
		return p.Clone(), nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		if p, ok := c.lookup(id); ok {
			return p, nil
		}
		p, err := c.src.Get(loadCtx, id)
		if err != nil {
			return Product{}, err
		}
		c.mu.Lock()
		c.entries[id] = cacheEntry{product: p, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return p, nil
	})

	select {
	case <-ctx.Done():
		return Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Product{}, res.Err
		}
		return res.Val.(Product).Clone(), nil
	}
}

// Prefetch warms the entry for id.
func (c *Cache) Prefetch(ctx context.Context, id string) error {
	_, err := c.Get(ctx, id)
	return err
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

func (c *Cache) lookup(id string) (Product, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return Product{}, false
	}
	return e.product, true
}
