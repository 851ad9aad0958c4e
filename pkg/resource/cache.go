// Package resource loads named static resources and memoizes their decoded
// form for the lifetime of a session.
//
// A Cache is owned by the composition root and handed to its consumers.
// Each key is retrieved at most once: concurrent callers for an uncached key
// share one in-flight retrieval, failures are never stored, and Clear is the
// only way to drop values (used on a full data reload).
package resource

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/metrics"
)

// LoadFunc retrieves and decodes the resource identified by key.
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// Cache memoizes the results of a LoadFunc by key.
type Cache[T any] struct {
	name string
	load LoadFunc[T]

	mu      sync.Mutex
	entries map[string]T
	// epoch advances on Clear; loads started in an older epoch are
	// returned to their callers but not stored.
	epoch uint64
	group singleflight.Group
}

// NewCache creates an empty cache. name only appears in debug output.
func NewCache[T any](name string, load LoadFunc[T]) *Cache[T] {
	return &Cache[T]{
		name:    name,
		load:    load,
		entries: make(map[string]T),
	}
}

// Get returns the cached value for key, retrieving it on first use.
// Callers that arrive while a retrieval for key is in flight wait for that
// retrieval instead of starting another. A failed retrieval is returned to
// every waiting caller and leaves the key uncached so a later Get retries.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		metrics.ResourceCache.Hit()
		return v, nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	// The retrieval outlives any single caller's cancellation because other
	// callers may be sharing it.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		metrics.ResourceCache.Miss()
		debug.Log("cache %s: miss %s", c.name, key)
		v, err := c.load(loadCtx, key)
		if err != nil {
			debug.Log("cache %s: load %s failed: %v", c.name, key, err)
			return v, err
		}
		c.mu.Lock()
		if c.epoch == epoch {
			c.entries[key] = v
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.ResourceCache.Shared()
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Peek returns the cached value for key without triggering a retrieval.
func (c *Cache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached value. Retrievals already in flight complete for
// their callers but are not stored.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]T)
	c.epoch++
	c.mu.Unlock()
	debug.Log("cache %s: cleared", c.name)
}
