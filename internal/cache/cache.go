// Package cache provides the session-scoped request memo used by read
// paths, plus an optional Redis mirror for rendered reports.
package cache

import (
	"context"
	"sync"
)

// RequestCache memoizes reads for the process lifetime. There is no TTL and
// no eviction: entries are replaced by Set or dropped by Invalidate, which
// every mutation site that affects the key is expected to call. The
// in-flight marker elects a single fetcher per key: SetLoading returns true
// for exactly one caller at a time, and everyone else Waits for that fetch
// to resolve instead of hitting the store again.
//
// Acceptable only because the dataset is small and session-scoped; this is
// a scalability limit, not a correctness one.
type RequestCache struct {
	mu       sync.Mutex
	entries  map[string]interface{}
	inflight map[string]chan struct{}
}

func NewRequestCache() *RequestCache {
	return &RequestCache{
		entries:  make(map[string]interface{}),
		inflight: make(map[string]chan struct{}),
	}
}

func (c *RequestCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

// Set stores value and resolves any in-flight fetch for key, releasing its
// waiters.
func (c *RequestCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.resolveLocked(key)
}

// SetLoading marks a fetch for key as in flight. It returns true for the
// caller elected to perform the fetch; a false return means another fetch
// is already running and the caller should Wait for it.
func (c *RequestCache) SetLoading(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[key]; ok {
		return false
	}
	c.inflight[key] = make(chan struct{})
	return true
}

// IsLoading reports whether a fetch for key was marked in-flight and has
// not resolved yet.
func (c *RequestCache) IsLoading(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

// Wait blocks until the in-flight fetch for key resolves or ctx is done.
// It returns immediately when nothing is in flight.
func (c *RequestCache) Wait(ctx context.Context, key string) error {
	c.mu.Lock()
	ch, ok := c.inflight[key]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invalidate drops the entry and resolves any in-flight marker. The next
// read for key goes to the store.
func (c *RequestCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.resolveLocked(key)
}

func (c *RequestCache) resolveLocked(key string) {
	if ch, ok := c.inflight[key]; ok {
		close(ch)
		delete(c.inflight, key)
	}
}
