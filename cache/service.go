package cache

import (
	"context"
	"fmt"
)

// FetchFn is the function signature CacheService expects when fetching from
// the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the cache-aside operations the paged repositories
// need. Implementations own the TTL: entries expire on their own and are
// never refreshed in place by this layer.
type CacheService interface {
	// GetOrFetch returns the cached value for key, or runs fetchFn on a
	// miss and stores the result. fetchFn must be a FetchFn[T]; the cache
	// write happens only after fetchFn returns successfully, so a cancelled
	// call never leaves a partial entry behind.
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	// Delete removes a single entry.
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every entry whose key starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is the type-safe wrapper over CacheService.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("cache: entry %q holds %T, not the requested type", key, result)
	}
	return typed, nil
}
