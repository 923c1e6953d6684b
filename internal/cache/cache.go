// Package cache provides the caching layer behind scraped mortgage
// rates, market pulse snapshots and shared portfolio links. Values are
// opaque byte slices so the same interface fronts both the in-process
// store and Redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a key-value store with per-entry TTL.
type Cache interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A non-positive ttl means the
	// implementation's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
