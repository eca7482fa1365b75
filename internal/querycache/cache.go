// Package querycache is a keyed, in-process cache of query results.
//
// Keys are ordered segment lists. Invalidation drops every entry whose key
// starts with the given prefix, segment by segment.
package querycache

import (
	"context"
	"strings"
	"sync"

	"campusnet/internal/metrics"
)

type Key []string

func NewKey(segments ...string) Key {
	return Key(segments)
}

func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

type entry struct {
	key   Key
	value any
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gen     uint64
}

func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key.String()]
	c.mu.RUnlock()

	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return e.value, ok
}

func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	c.entries[key.String()] = entry{key: append(Key(nil), key...), value: value}
	c.mu.Unlock()
}

// Patch replaces the entry with fn(previous) under the cache lock and
// returns the previous value. fn sees ok=false when the key is absent.
func (c *Cache) Patch(key Key, fn func(prev any, ok bool) any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := key.String()
	prev, ok := c.entries[s]
	c.entries[s] = entry{key: append(Key(nil), key...), value: fn(prev.value, ok)}
	return prev.value, ok
}

// Restore puts back a value captured by Patch, or deletes the key when there was none.
func (c *Cache) Restore(key Key, prev any, existed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existed {
		c.entries[key.String()] = entry{key: append(Key(nil), key...), value: prev}
		return
	}
	delete(c.entries, key.String())
}

// Invalidate drops every entry under prefix and returns how many were removed.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	n := 0
	for s, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, s)
			n++
		}
	}
	metrics.CacheInvalidations.Add(float64(n))
	return n
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *Cache) setIfGeneration(key Key, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.entries[key.String()] = entry{key: append(Key(nil), key...), value: value}
}

// GetAs is Get with a type assertion. A value of another type counts as a miss.
func GetAs[T any](c *Cache, key Key) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Fetch returns the cached value for key or runs load and caches its result.
// Errors are never cached. A load that overlaps an invalidation is returned
// to the caller but not stored.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	if v, ok := GetAs[T](c, key); ok {
		return v, nil
	}

	gen := c.generation()
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.setIfGeneration(key, v, gen)
	return v, nil
}

// Refresh drops key and loads it again.
func Refresh[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	c.Invalidate(key)
	return Fetch(ctx, c, key, load)
}
