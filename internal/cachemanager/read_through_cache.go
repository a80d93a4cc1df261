package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache front-ends a loader with a CacheManager. The cache key and
// the loader input are separate: the codec keys parsed documents by
// path|modtime while loading by path alone, so a touched file misses the
// cache and reparses.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache CacheManager[K, V]
	load  func(ctx context.Context, input I) (V, error)
	skip  bool
}

// NewReadThroughCache wraps cache around load. With skip set, every read
// bypasses the cache and calls the loader directly.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	load func(ctx context.Context, input I) (V, error),
	skip bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache: cache,
		load:  load,
		skip:  skip,
	}
}

// Get returns the cached value for key, loading and storing it on a miss.
// Loader errors are returned without being cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.skip {
		return r.load(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}
	return r.loadAndStore(ctx, key, input, ttl)
}

// GetWithRefresh is Get with the hit path also extending the entry's TTL.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.skip {
		return r.load(ctx, input)
	}

	if value, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
		return value, nil
	}
	return r.loadAndStore(ctx, key, input, ttl)
}

func (r *ReadThroughCache[K, V, I]) loadAndStore(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	value, err := r.load(ctx, input)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}
