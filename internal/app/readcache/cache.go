// Package readcache memoizes store reads for the lifetime of one logical
// operation, such as a static site build or a single page render.
//
// A cache travels in the context:
//
//	ctx = readcache.WithContext(ctx, readcache.New())
//	day, err := readcache.GetOrFetch(ctx, "day:2024-03-15", func(ctx context.Context) ([]domain.QuoteRecord, error) {
//	    return store.ByDate(ctx, "2024-03-15")
//	})
//
// Without a cache in the context, GetOrFetch simply calls fetch. Errors are
// never cached.
package readcache

import (
	"context"
	"sync"
	"sync/atomic"
)

type ctxKey struct{}

// Cache is a concurrency-safe memo of fetched values.
type Cache struct {
	values sync.Map
	hits   sync.Map
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{}
}

// FromContext extracts the cache, or nil if none is present.
func FromContext(ctx context.Context) *Cache {
	if ctx == nil {
		return nil
	}

	if c, ok := ctx.Value(ctxKey{}).(*Cache); ok {
		return c
	}

	return nil
}

// WithContext stores the cache in the context.
func WithContext(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// GetOrFetch returns the cached value for key, or calls fetch and caches its
// result. Concurrent first calls for one key may both fetch; the first stored
// value wins.
func GetOrFetch[T any](ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	c := FromContext(ctx)
	if c == nil {
		return fetch(ctx)
	}

	if cached, ok := c.values.Load(key); ok {
		if v, ok := cached.(T); ok {
			c.countHit(key)
			return v, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	actual, _ := c.values.LoadOrStore(key, value)
	if v, ok := actual.(T); ok {
		return v, nil
	}

	return value, nil
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	n := 0
	c.values.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

// Hits returns how many lookups of key were served from the cache.
func (c *Cache) Hits(key string) int64 {
	if v, ok := c.hits.Load(key); ok {
		return v.(*atomic.Int64).Load()
	}

	return 0
}

func (c *Cache) countHit(key string) {
	v, _ := c.hits.LoadOrStore(key, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}
