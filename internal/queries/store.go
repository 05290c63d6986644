package queries

import (
	"context"
	"sync"
	"time"
)

// Cache is a keyed store of fetch results with a time-to-live freshness
// policy and request coalescing.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewCache creates a Cache. A non-positive ttl falls back to [DefaultTTL].
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// do returns the entry for key, reusing a fresh result or attaching to an
// in-flight fetch. When neither applies it runs fetch in the calling
// goroutine and publishes the settled entry.
//
// At most one fetch is in flight per key; late arrivals for the same key wait
// on the pending entry rather than issuing a duplicate call. A waiter whose
// context expires abandons the result, which still lands in the cache.
func (c *Cache) do(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok {
		switch e.status {
		case Pending:
			done := e.done
			c.mu.Unlock()

			select {
			case <-done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			c.mu.Lock()
			data, err := e.data, e.err
			c.mu.Unlock()
			return data, err
		case Success:
			if c.now().Sub(e.fetchedAt) <= c.ttl {
				data := e.data
				c.mu.Unlock()
				return data, nil
			}
			// Stale: fall through and refetch under a new entry.
		case Error:
			// Errors are never reused; the next caller retries.
		}
	}

	e := &entry{status: Pending, done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	data, err := fetch(ctx)

	c.mu.Lock()
	e.data = data
	e.err = err
	e.fetchedAt = c.now()
	if err != nil {
		e.status = Error
	} else {
		e.status = Success
	}
	close(e.done)
	c.mu.Unlock()

	return data, err
}

// Invalidate drops the entry for key, if any.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of cache entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// FetchedAt returns when the entry for key settled, and whether it exists.
func (c *Cache) FetchedAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// run executes fetch through the cache and wraps the outcome as a [Result].
func run[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) Result[T] {
	data, err := c.do(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return Result[T]{Status: Error, Err: err}
	}

	value, ok := data.(T)
	if !ok {
		var zero T
		return Result[T]{Status: Success, Data: zero}
	}
	return Result[T]{Status: Success, Data: value}
}
