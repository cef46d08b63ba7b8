package pagedrepo

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-paged-query/cache"
	"github.com/goliatone/go-paged-query/queryengine"
)

// FetchHook replaces the row fetch itself. The query arrives with filters,
// search, sort and paging already applied; the hook runs it and fills dest.
type FetchHook[T any] func(ctx context.Context, q *bun.SelectQuery, dest *[]T) error

// Option configures a Repository.
type Option[T any] func(*Repository[T])

// WithLogger replaces the default slog logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(r *Repository[T]) { r.logger = logger }
}

// WithKeyGenerator replaces the default cache key generator.
func WithKeyGenerator[T any](keys cache.KeyGenerator) Option[T] {
	return func(r *Repository[T]) { r.keys = keys }
}

// WithEngineOptions forwards options to the entity's query engine, such as
// a custom normalizer or search/sort predicates.
func WithEngineOptions[T any](opts ...queryengine.Option) Option[T] {
	return func(r *Repository[T]) { r.engineOpts = append(r.engineOpts, opts...) }
}

// WithFetch installs a custom row fetch.
func WithFetch[T any](fetch FetchHook[T]) Option[T] {
	return func(r *Repository[T]) { r.fetch = fetch }
}
