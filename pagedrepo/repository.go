package pagedrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-paged-query/cache"
	"github.com/goliatone/go-paged-query/query"
	"github.com/goliatone/go-paged-query/queryengine"
)

// Repository executes cache-aside paged reads for one entity type. T is the
// bun model struct of the entity. The same five-step flow serves every
// entity: attach schema, validate, derive the cache key, return the cached
// page on a hit, otherwise run the count and page queries and cache the
// result.
//
// The repository is read-path only. Cached pages go stale relative to
// writes and expire on TTL alone; Invalidate exists for callers that need
// to drop an entity's entries explicitly. Callers with identical keys are
// not coordinated: the in-memory backend happens to deduplicate concurrent
// fetches, the redis backend does not.
type Repository[T any] struct {
	db     *bun.DB
	schema *query.Schema
	engine *queryengine.Engine
	cache  cache.CacheService
	keys   cache.KeyGenerator
	logger *slog.Logger

	// registry tracks the keys this repository has written so Invalidate
	// can drop them without scanning the backend.
	registry *xsync.MapOf[string, struct{}]

	engineOpts []queryengine.Option
	fetch      FetchHook[T]
}

// New wires a repository for the entity described by schema.
func New[T any](db *bun.DB, schema *query.Schema, cacheService cache.CacheService, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		db:       db,
		schema:   schema,
		cache:    cacheService,
		keys:     cache.NewKeyGenerator(),
		logger:   slog.Default(),
		registry: xsync.NewMapOf[string, struct{}](),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.engine = queryengine.New(schema, r.engineOpts...)
	return r
}

// Schema returns the entity schema the repository serves.
func (r *Repository[T]) Schema() *query.Schema {
	return r.schema
}

// GetPaged returns one page of the entity matching the request. Validation
// happens before any cache or storage access; a cache hit is returned
// unchanged; a miss runs the count query then the page query sequentially
// and caches the assembled result.
func (r *Repository[T]) GetPaged(ctx context.Context, req query.PagedRequest) (query.PagedResult[T], error) {
	var zero query.PagedResult[T]

	req = req.WithSchema(r.schema)
	if err := req.Validate(); err != nil {
		return zero, r.validationError("GetPaged", err)
	}

	key := r.keys.ListKey(r.schema.Entity(), req)
	r.track(key)

	res, err := cache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (query.PagedResult[T], error) {
		return r.fetchPage(ctx, r.db, req)
	})
	if err != nil {
		r.logFailure(ctx, "GetPaged", req, err)
		return zero, r.executionError("GetPaged")
	}
	return res, nil
}

// GetPagedTx runs the same paged read inside a caller-supplied transaction
// handle, bypassing the cache entirely so the read observes the
// transaction's own writes.
func (r *Repository[T]) GetPagedTx(ctx context.Context, tx bun.IDB, req query.PagedRequest) (query.PagedResult[T], error) {
	var zero query.PagedResult[T]

	req = req.WithSchema(r.schema)
	if err := req.Validate(); err != nil {
		return zero, r.validationError("GetPagedTx", err)
	}

	res, err := r.fetchPage(ctx, tx, req)
	if err != nil {
		r.logFailure(ctx, "GetPagedTx", req, err)
		return zero, r.executionError("GetPagedTx")
	}
	return res, nil
}

// GetByField returns the first entity whose field equals value. A missing
// record is a normal outcome, reported through found, not an error. Both
// hits and misses are cached under the field lookup key.
func (r *Repository[T]) GetByField(ctx context.Context, field string, value any) (record T, found bool, err error) {
	var zero T

	fld, lookupErr := r.filterableField("GetByField", field)
	if lookupErr != nil {
		return zero, false, lookupErr
	}

	key := r.keys.FieldKey(r.schema.Entity(), "get", field, value)
	r.track(key)

	res, err := cache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (fieldResult[T], error) {
		return r.fetchByField(ctx, r.db, fld, value)
	})
	if err != nil {
		r.logFieldFailure(ctx, "GetByField", field, err)
		return zero, false, r.executionError("GetByField")
	}
	return res.Record, res.Found, nil
}

// GetByFieldTx is GetByField inside a caller-supplied transaction handle,
// bypassing the cache.
func (r *Repository[T]) GetByFieldTx(ctx context.Context, tx bun.IDB, field string, value any) (record T, found bool, err error) {
	var zero T

	fld, lookupErr := r.filterableField("GetByFieldTx", field)
	if lookupErr != nil {
		return zero, false, lookupErr
	}

	res, err := r.fetchByField(ctx, tx, fld, value)
	if err != nil {
		r.logFieldFailure(ctx, "GetByFieldTx", field, err)
		return zero, false, r.executionError("GetByFieldTx")
	}
	return res.Record, res.Found, nil
}

// ExistsByField reports whether any entity has field equal to value.
func (r *Repository[T]) ExistsByField(ctx context.Context, field string, value any) (bool, error) {
	fld, lookupErr := r.filterableField("ExistsByField", field)
	if lookupErr != nil {
		return false, lookupErr
	}

	key := r.keys.FieldKey(r.schema.Entity(), "exists", field, value)
	r.track(key)

	exists, err := cache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (bool, error) {
		return r.db.NewSelect().Model((*T)(nil)).
			Where("? = ?", bun.Ident(fld.Column), value).
			Exists(ctx)
	})
	if err != nil {
		r.logFieldFailure(ctx, "ExistsByField", field, err)
		return false, r.executionError("ExistsByField")
	}
	return exists, nil
}

// CountByField counts the entities whose field equals value.
func (r *Repository[T]) CountByField(ctx context.Context, field string, value any) (int, error) {
	fld, lookupErr := r.filterableField("CountByField", field)
	if lookupErr != nil {
		return 0, lookupErr
	}

	key := r.keys.FieldKey(r.schema.Entity(), "count", field, value)
	r.track(key)

	count, err := cache.GetOrFetch(ctx, r.cache, key, func(ctx context.Context) (int, error) {
		return r.db.NewSelect().Model((*T)(nil)).
			Where("? = ?", bun.Ident(fld.Column), value).
			Count(ctx)
	})
	if err != nil {
		r.logFieldFailure(ctx, "CountByField", field, err)
		return 0, r.executionError("CountByField")
	}
	return count, nil
}

// Invalidate drops every cache entry this repository has written. It is an
// explicit operation; no write path triggers it.
func (r *Repository[T]) Invalidate(ctx context.Context) error {
	var firstErr error
	r.registry.Range(func(key string, _ struct{}) bool {
		if err := r.cache.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
		r.registry.Delete(key)
		return true
	})
	if firstErr != nil {
		r.logger.ErrorContext(ctx, "cache invalidation failed",
			slog.String("entity", r.schema.Entity()),
			slog.Any("error", firstErr))
		return r.executionError("Invalidate")
	}
	return nil
}

// fieldResult wraps a single-entity lookup so hit-or-miss round-trips the
// cache as one value.
type fieldResult[T any] struct {
	Record T    `json:"record" msgpack:"record"`
	Found  bool `json:"found" msgpack:"found"`
}

// fetchPage is the cache-miss compute: a count query over the full match
// set, then the windowed page query, run sequentially on the same handle.
// Requests whose search term cannot be expressed in SQL take the fold-scan
// path instead.
func (r *Repository[T]) fetchPage(ctx context.Context, db bun.IDB, req query.PagedRequest) (query.PagedResult[T], error) {
	var zero query.PagedResult[T]

	if r.engine.NeedsFoldScan(req) {
		return r.fetchPageFolded(ctx, db, req)
	}

	cq, err := r.engine.Apply(db.NewSelect().Model((*T)(nil)), req)
	if err != nil {
		return zero, err
	}
	total, err := cq.Count(ctx)
	if err != nil {
		return zero, err
	}

	var items []T
	pq, err := r.engine.Apply(db.NewSelect().Model(&items), req)
	if err != nil {
		return zero, err
	}
	pq = r.engine.ApplyPaging(r.engine.ApplySort(pq, req), req)

	if r.fetch != nil {
		err = r.fetch(ctx, pq, &items)
	} else {
		err = pq.Scan(ctx)
	}
	if err != nil {
		return zero, err
	}

	return query.NewPagedResult(items, total, req.Page, req.PageSize), nil
}

// fetchPageFolded fetches one sorted, filter-matched candidate window of at
// most queryengine.FoldScanLimit rows and completes the search over it
// application-side, so diacritic folding works on storage engines that
// cannot express it. The total counts matches within the window only.
func (r *Repository[T]) fetchPageFolded(ctx context.Context, db bun.IDB, req query.PagedRequest) (query.PagedResult[T], error) {
	var zero query.PagedResult[T]

	var candidates []T
	pq, err := r.engine.Apply(db.NewSelect().Model(&candidates), req)
	if err != nil {
		return zero, err
	}
	pq = r.engine.ApplySort(pq, req).Limit(queryengine.FoldScanLimit)

	if r.fetch != nil {
		err = r.fetch(ctx, pq, &candidates)
	} else {
		err = pq.Scan(ctx)
	}
	if err != nil {
		return zero, err
	}

	matched := queryengine.FilterSearch(r.engine, candidates, req.Search)
	total := len(matched)

	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}
	return query.NewPagedResult(matched[start:end], total, req.Page, req.PageSize), nil
}

func (r *Repository[T]) fetchByField(ctx context.Context, db bun.IDB, fld query.Field, value any) (fieldResult[T], error) {
	var rec T
	err := db.NewSelect().Model(&rec).
		Where("? = ?", bun.Ident(fld.Column), value).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return fieldResult[T]{}, nil
	}
	if err != nil {
		return fieldResult[T]{}, err
	}
	return fieldResult[T]{Record: rec, Found: true}, nil
}

func (r *Repository[T]) filterableField(op, field string) (query.Field, error) {
	fld, ok := r.schema.Lookup(field)
	if !ok || !fld.Filterable {
		return query.Field{}, &Error{
			Entity:  r.schema.Entity(),
			Op:      op,
			Kind:    KindValidation,
			Message: fmt.Sprintf("field %q is not filterable on %s", field, r.schema.Entity()),
		}
	}
	return fld, nil
}

func (r *Repository[T]) track(key string) {
	r.registry.Store(key, struct{}{})
}

func (r *Repository[T]) validationError(op string, err error) error {
	return &Error{Entity: r.schema.Entity(), Op: op, Kind: KindValidation, Message: err.Error()}
}

// executionError is what callers see in place of any cache, storage or
// mapping failure. The cause stays in the logs.
func (r *Repository[T]) executionError(op string) error {
	return &Error{Entity: r.schema.Entity(), Op: op, Kind: KindExecution, Message: "query execution failed"}
}

func (r *Repository[T]) logFailure(ctx context.Context, op string, req query.PagedRequest, err error) {
	r.logger.ErrorContext(ctx, "paged query failed",
		slog.String("entity", r.schema.Entity()),
		slog.String("op", op),
		slog.Int("page", req.Page),
		slog.Int("page_size", req.PageSize),
		slog.String("search", req.Search),
		slog.String("sort_by", req.SortBy),
		slog.Int("filters", len(req.Filters)),
		slog.Any("error", err))
}

func (r *Repository[T]) logFieldFailure(ctx context.Context, op, field string, err error) {
	r.logger.ErrorContext(ctx, "field lookup failed",
		slog.String("entity", r.schema.Entity()),
		slog.String("op", op),
		slog.String("field", field),
		slog.Any("error", err))
}
