// Package pagedrepo provides the cache-aside orchestrator that every paged
// read goes through: one generic Repository[T] per entity, all sharing the
// same validate → key → cache → query → cache flow.
//
// # Flow
//
// GetPaged attaches the entity schema to the request, validates it (all
// violations reported at once, before any I/O), derives a deterministic
// cache key, and returns the cached page on a hit. On a miss it runs the
// count query and then the windowed page query sequentially, assembles the
// PagedResult, caches it with the backend's TTL and returns it. Search
// terms the engine's normalizer cannot express in SQL are matched over a
// bounded candidate window after the rows are fetched.
//
//	repo := pagedrepo.New[Product](db, productSchema, cacheService)
//
//	page, err := repo.GetPaged(ctx, query.NewRequest(1, 25).WithSearch("milk"))
//
// # Errors
//
// Every operation returns either data or a single *Error. Validation
// failures carry the aggregated message and happen before any I/O.
// Cache, storage and mapping failures are logged with their context and
// surface as a generic execution error; the cause never reaches the caller.
// Missing records from the single-entity lookups are reported through the
// found return value, not as errors. No retries happen at this layer.
//
// # Transactions
//
// The *Tx variants take an explicit bun.IDB handle and bypass the cache, so
// reads inside a transaction observe that transaction's writes. The cache
// itself is transaction-agnostic: entries expire on TTL and are only
// removed early by an explicit Invalidate call.
package pagedrepo
