// Package cache provides optional byte caches for rendered composites and
// rasterized decoration assets.
//
// Caching is never required for correctness: the compositor is a pure
// function of its inputs, so a cache only saves repeated work. [NullCache]
// disables caching, [MemoryCache] serves an interactive session, and
// [FileCache] persists rasterized SVG assets between runs.
//
// Keys are produced by a [Keyer] so the key layout is defined in one place.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/photobooth/pkg/observability"
)

// Default TTLs by entry type.
const (
	// AssetTTL applies to rasterized decoration assets. Asset keys include
	// the source content hash, so entries never go stale.
	AssetTTL = 30 * 24 * time.Hour

	// CompositeTTL applies to encoded composites.
	CompositeTTL = 24 * time.Hour
)

// Key types reported to cache hooks.
const (
	KeyTypeAsset     = "asset"
	KeyTypeComposite = "composite"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// GetOrCompute returns the cached value for key, or computes, stores, and
// returns it. Cache read and write failures degrade to a recompute; only
// compute errors are returned. The bool reports a cache hit.
func GetOrCompute(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
