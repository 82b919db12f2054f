package storage

import (
	"context"
	"sync"

	"parqedit/internal/metrics"
)

// CachedStore memoizes successful reads per (bucket, key) so repeated loads
// of an unchanged object skip the network round-trip.
//
// A Write to an address drops that address from the cache, so the next Read
// after a save observes the saved bytes instead of the stale entry.
type CachedStore struct {
	inner Store

	mu      sync.Mutex
	entries map[Address][]byte
}

// NewCachedStore wraps a Store with a read-memoization layer.
func NewCachedStore(inner Store) *CachedStore {
	return &CachedStore{
		inner:   inner,
		entries: make(map[Address][]byte),
	}
}

// Read returns the cached blob when present, otherwise reads through and
// caches the result. Failed reads are not cached.
func (c *CachedStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	addr := Address{Bucket: bucket, Key: key}

	c.mu.Lock()
	if data, ok := c.entries[addr]; ok {
		c.mu.Unlock()
		metrics.CacheHits.Inc()
		return cloneBytes(data), nil
	}
	c.mu.Unlock()

	metrics.CacheMisses.Inc()
	data, err := c.inner.Read(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[addr] = data
	c.mu.Unlock()
	return cloneBytes(data), nil
}

// cloneBytes copies a cached blob so callers cannot mutate the cache entry.
func cloneBytes(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// Write writes through and invalidates the cached entry for the address.
func (c *CachedStore) Write(ctx context.Context, bucket, key string, data []byte) error {
	if err := c.inner.Write(ctx, bucket, key, data); err != nil {
		return err
	}
	c.Invalidate(bucket, key)
	return nil
}

// Copy passes through. The destination is invalidated in case a backup key
// collides with a previously read address (same-day repeated saves).
func (c *CachedStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	if err := c.inner.Copy(ctx, bucket, srcKey, dstKey); err != nil {
		return err
	}
	c.Invalidate(bucket, dstKey)
	return nil
}

// Invalidate drops the cache entry for an address, if any.
func (c *CachedStore) Invalidate(bucket, key string) {
	addr := Address{Bucket: bucket, Key: key}
	c.mu.Lock()
	if _, ok := c.entries[addr]; ok {
		delete(c.entries, addr)
		metrics.CacheInvalidations.Inc()
	}
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *CachedStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
