package cache

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many writes pass between full sweeps of expired
// entries. Reads already drop expired keys as they find them; the
// sweep catches keys nobody asks for again.
const sweepEvery = 256

// memEntry pairs a value with its expiry, kept as UnixNano so the hot
// path compares integers.
type memEntry struct {
	data []byte
	exp  int64
}

// MemoryCache is a thread-safe in-process cache with TTL. It is the
// default backend when no Redis address is configured.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	defaultTTL time.Duration
	writes     int
}

// NewMemoryCache creates a cache with the given default TTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &MemoryCache{entries: make(map[string]memEntry), defaultTTL: defaultTTL}
}

// Get returns the value stored under key, or ErrMiss when the key is
// absent or past its expiry. The returned slice is the caller's own;
// mutating it never corrupts the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if time.Now().UnixNano() > e.exp {
		delete(c.entries, key)
		return nil, ErrMiss
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// Set stores a copy of value under key for ttl, or the default TTL
// when ttl is not positive.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	data := make([]byte, len(value))
	copy(data, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{data: data, exp: time.Now().Add(ttl).UnixNano()}
	if c.writes++; c.writes%sweepEvery == 0 {
		c.sweep()
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Flush drops every entry, expired or not.
func (c *MemoryCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memEntry)
}

// Len reports the number of unexpired entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	n := 0
	for _, e := range c.entries {
		if now <= e.exp {
			n++
		}
	}
	return n
}

// sweep removes expired entries. The caller holds mu.
func (c *MemoryCache) sweep() {
	now := time.Now().UnixNano()
	for k, e := range c.entries {
		if now > e.exp {
			delete(c.entries, k)
		}
	}
}
