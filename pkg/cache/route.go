package cache

import (
	"context"
	"encoding/json"
	"time"

	"searoute/internal/port"
)

// RouteCache specializes a Cache for RouteResponse storage, keyed by
// request fingerprint (spec §6).
type RouteCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewRouteCache wraps cache with a TTL default applied when callers don't
// pass one explicitly.
func NewRouteCache(cache Cache, defaultTTL time.Duration) *RouteCache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &RouteCache{cache: cache, defaultTTL: defaultTTL}
}

// Get looks up a previously computed response for req's fingerprint. The
// second return value is false on a cache miss (no error) or when the
// stored payload is corrupt, in which case the bad entry is evicted.
func (rc *RouteCache) Get(ctx context.Context, req *port.Request) (*port.RouteResponse, bool, error) {
	key := RouteCacheKey(Fingerprint(req))

	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var resp port.RouteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		_ = rc.cache.Delete(ctx, key) //nolint:errcheck // best-effort cleanup of a corrupt entry
		return nil, false, nil
	}

	resp.CacheHit = true
	return &resp, true, nil
}

// Set stores resp under req's fingerprint. The cache_hit flag is always
// cleared on write per spec §6's key-value contract.
func (rc *RouteCache) Set(ctx context.Context, req *port.Request, resp *port.RouteResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}
	key := RouteCacheKey(Fingerprint(req))

	stored := *resp
	stored.CacheHit = false

	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}
	return rc.cache.Set(ctx, key, data, ttl)
}

// Invalidate removes the cache entry for req's fingerprint, if any.
func (rc *RouteCache) Invalidate(ctx context.Context, req *port.Request) error {
	return rc.cache.Delete(ctx, RouteCacheKey(Fingerprint(req)))
}
