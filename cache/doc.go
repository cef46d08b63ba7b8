// Package cache provides the caching contract and deterministic key
// generation for the paged query layer.
//
// # Overview
//
// The package exports two interfaces and their default implementations:
//
//   - CacheService: cache-aside get-or-fetch with TTL expiry, backed either
//     by an in-process sturdyc cache or by Redis (see Config.Backend)
//   - KeyGenerator: derives stable cache keys from paged requests and
//     single-field lookups
//
// # Key determinism
//
// ListKey renders a request into tagged segments joined by KeySeparator:
//
//	product::P:2::PS:10::S:milk::SO:name:asc::F:brand:eq:acme|price:gte:10
//
// The entity name, page and page size are always present. Search (S:),
// sort (SO:) and filters (F:) appear only when set. Filter segments are
// sorted before joining, so two requests that differ only in the order
// their filters were added share one cache entry. Client-supplied strings
// are escaped before joining, so a search term or filter value embedding
// the separator cannot render as another request's key. Keys above the
// length threshold collapse to an xxhash digest of the full rendering.
//
// # Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	keys := cache.NewKeyGenerator()
//
//	key := keys.ListKey("product", req)
//	page, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (query.PagedResult[Product], error) {
//		return runQuery(ctx, req)
//	})
//
// # Staleness
//
// Entries live until their TTL expires. Nothing in this module invalidates
// them on writes; reads may be stale relative to concurrent writes, bounded
// by the TTL. Repositories expose an explicit Invalidate for callers that
// need to drop an entity's entries early.
package cache
