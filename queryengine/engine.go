package queryengine

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-paged-query/query"
)

// SearchPredicate overrides the engine's default free-text predicate for
// one entity. The term has been trimmed but not folded.
type SearchPredicate func(q *bun.SelectQuery, term string) *bun.SelectQuery

// SortPredicate overrides the engine's default ordering for one entity.
// The field has already been validated against the schema.
type SortPredicate func(q *bun.SelectQuery, field query.Field, dir query.SortDirection) *bun.SelectQuery

// Engine compiles validated requests into bun predicates for one entity.
// It is stateless apart from its schema and hooks; one engine serves all
// requests for its entity concurrently.
type Engine struct {
	schema     *query.Schema
	normalizer query.Normalizer
	searchHook SearchPredicate
	sortHook   SortPredicate
}

// Option configures an Engine.
type Option func(*Engine)

// WithNormalizer replaces the search normalizer. The default FoldNormalizer
// matches application-side over a bounded candidate window; install a
// query.SQLNormalizer such as UnaccentNormalizer to push the matching down
// to the storage engine instead.
func WithNormalizer(n query.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithSearchPredicate installs a custom free-text predicate.
func WithSearchPredicate(p SearchPredicate) Option {
	return func(e *Engine) { e.searchHook = p }
}

// WithSortPredicate installs a custom sort predicate.
func WithSortPredicate(p SortPredicate) Option {
	return func(e *Engine) { e.sortHook = p }
}

// New builds the engine for an entity schema.
func New(schema *query.Schema, opts ...Option) *Engine {
	e := &Engine{
		schema:     schema,
		normalizer: query.FoldNormalizer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the entity schema the engine compiles against.
func (e *Engine) Schema() *query.Schema {
	return e.schema
}

// Apply adds the filter and search predicates to q. It is used for both the
// count query and the page query so the two always agree on the match set.
// Filters AND-combine with each other and with the search predicate.
//
// When NeedsFoldScan reports true for the request, the search term is not
// expressed in SQL and Apply adds only the filters; the caller must complete
// the search over the fetched rows with FilterSearch.
func (e *Engine) Apply(q *bun.SelectQuery, req query.PagedRequest) (*bun.SelectQuery, error) {
	q, err := e.applyFilters(q, req.Filters)
	if err != nil {
		return nil, err
	}
	return e.applySearch(q, req.Search), nil
}

// ApplySort orders q by the request's sort field, falling back to the
// schema's default sort when the request carries none. No secondary
// tie-break key is added.
func (e *Engine) ApplySort(q *bun.SelectQuery, req query.PagedRequest) *bun.SelectQuery {
	field, dir, ok := e.resolveSort(req)
	if !ok {
		return q
	}
	if e.sortHook != nil {
		return e.sortHook(q, field, dir)
	}
	if dir.IsDescending() {
		return q.OrderExpr("? DESC", bun.Ident(field.Column))
	}
	return q.OrderExpr("? ASC", bun.Ident(field.Column))
}

// ApplyPaging applies the offset/limit window of the requested page. Only
// the page query gets this; the count query never does.
func (e *Engine) ApplyPaging(q *bun.SelectQuery, req query.PagedRequest) *bun.SelectQuery {
	return q.Limit(req.PageSize).Offset(req.Offset())
}

func (e *Engine) resolveSort(req query.PagedRequest) (query.Field, query.SortDirection, bool) {
	if req.SortBy != "" {
		if f, ok := e.schema.Lookup(req.SortBy); ok && f.Sortable {
			return f, req.SortDirection, true
		}
	}
	return e.schema.DefaultSort()
}

// applySearch OR-combines a normalized contains test over every searchable
// field. Non-text searchable fields fall back to an equality check on the
// raw term. The whole group AND-combines with the filters. Normalizers
// without a SQL expression contribute nothing here; their matching runs
// over the fetched rows instead.
func (e *Engine) applySearch(q *bun.SelectQuery, term string) *bun.SelectQuery {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	if e.searchHook != nil {
		return e.searchHook(q, term)
	}

	sqln, ok := e.normalizer.(query.SQLNormalizer)
	if !ok {
		return q
	}

	fields := e.schema.SearchableFields()
	if len(fields) == 0 {
		return q
	}

	pattern := "%" + sqln.Fold(term) + "%"
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, f := range fields {
			if f.Type == query.FieldText {
				q = q.WhereOr(sqln.ContainsExpr(), bun.Ident(f.Column), pattern)
			} else {
				q = q.WhereOr("? = ?", bun.Ident(f.Column), term)
			}
		}
		return q
	})
}

// applyFilters translates each filter into a comparison against its mapped
// column. Substring operators match raw, unlike search, which normalizes.
// A filter naming an unmapped field fails the call; validation rejects
// those earlier, so hitting one here means the request skipped validation.
func (e *Engine) applyFilters(q *bun.SelectQuery, filters []query.Filter) (*bun.SelectQuery, error) {
	for _, f := range filters {
		fld, ok := e.schema.Lookup(f.Field)
		if !ok || !fld.Filterable {
			return nil, fmt.Errorf("queryengine: field %q is not filterable on %s", f.Field, e.schema.Entity())
		}
		col := bun.Ident(fld.Column)

		switch f.Operator {
		case query.OpEquals:
			q = q.Where("? = ?", col, f.Value)
		case query.OpNotEquals:
			q = q.Where("? <> ?", col, f.Value)
		case query.OpContains:
			q = q.Where("? LIKE ?", col, "%"+patternValue(f.Value)+"%")
		case query.OpNotContains:
			q = q.Where("? NOT LIKE ?", col, "%"+patternValue(f.Value)+"%")
		case query.OpStartsWith:
			q = q.Where("? LIKE ?", col, patternValue(f.Value)+"%")
		case query.OpEndsWith:
			q = q.Where("? LIKE ?", col, "%"+patternValue(f.Value))
		case query.OpGreaterThan, query.OpGreaterThanOrEqual, query.OpLessThan, query.OpLessThanOrEqual:
			cv, err := comparableValue(f.Value)
			if err != nil {
				return nil, fmt.Errorf("queryengine: filter on %q: %w", f.Field, err)
			}
			q = q.Where("? "+rangeSQL(f.Operator)+" ?", col, cv)
		case query.OpIn:
			// An empty member list must match nothing; IN () is a syntax
			// error on Postgres.
			if vals := setValues(f.Value); len(vals) == 0 {
				q = q.Where("1 = 0")
			} else {
				q = q.Where("? IN (?)", col, bun.In(vals))
			}
		case query.OpNotIn:
			// An empty member list excludes nothing.
			if vals := setValues(f.Value); len(vals) > 0 {
				q = q.Where("? NOT IN (?)", col, bun.In(vals))
			}
		case query.OpIsNull:
			q = q.Where("? IS NULL", col)
		case query.OpIsNotNull:
			q = q.Where("? IS NOT NULL", col)
		default:
			return nil, fmt.Errorf("queryengine: unknown operator %q on field %q", f.Operator, f.Field)
		}
	}
	return q, nil
}

func rangeSQL(op query.Operator) string {
	switch op {
	case query.OpGreaterThan:
		return ">"
	case query.OpGreaterThanOrEqual:
		return ">="
	case query.OpLessThan:
		return "<"
	default:
		return "<="
	}
}
