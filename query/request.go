package query

// SortDirection selects the ordering applied by a sort predicate.
type SortDirection string

const (
	// SortAscending orders results low to high. It is the default direction.
	SortAscending SortDirection = "asc"
	// SortDescending orders results high to low.
	SortDescending SortDirection = "desc"
)

// IsDescending reports whether the direction sorts high to low. The zero
// value and any unrecognized value fall back to ascending.
func (d SortDirection) IsDescending() bool {
	return d == SortDescending
}

func (d SortDirection) normalized() SortDirection {
	if d.IsDescending() {
		return SortDescending
	}
	return SortAscending
}

const (
	// DefaultPageSize is used when a request does not specify a page size.
	DefaultPageSize = 10
	// MaxPageSize caps the number of records a single page may return.
	MaxPageSize = 100
	// MaxSearchLength caps the free-text search term.
	MaxSearchLength = 200
	// MaxSortFieldLength caps the sort field name.
	MaxSortFieldLength = 50
)

// PagedRequest is the client-supplied description of a list query: which page
// to fetch, an optional free-text search term, an optional sort, and a set of
// typed filters. The field schema is attached by the repository before
// validation; clients never supply it.
//
// Construct requests with NewRequest so the page size invariant holds:
// PageSize is always within [1, MaxPageSize] after construction.
type PagedRequest struct {
	Page          int           `json:"page"`
	PageSize      int           `json:"pageSize"`
	Search        string        `json:"search,omitempty"`
	SortBy        string        `json:"sortBy,omitempty"`
	SortDirection SortDirection `json:"sortDirection,omitempty"`
	Filters       []Filter      `json:"filters,omitempty"`

	schema *Schema
}

// NewRequest builds a PagedRequest for the given page, clamping pageSize into
// [1, MaxPageSize]. A zero or negative pageSize selects DefaultPageSize.
func NewRequest(page, pageSize int) PagedRequest {
	return PagedRequest{
		Page:          page,
		PageSize:      ClampPageSize(pageSize),
		SortDirection: SortAscending,
	}
}

// ClampPageSize maps an arbitrary requested size onto the allowed range.
// Non-positive sizes select the default rather than the minimum, so callers
// that leave the field unset get a sensible page.
func ClampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

// WithSearch returns a copy of the request carrying the search term.
func (r PagedRequest) WithSearch(term string) PagedRequest {
	r.Search = term
	return r
}

// WithSort returns a copy of the request sorted by the named field.
func (r PagedRequest) WithSort(field string, dir SortDirection) PagedRequest {
	r.SortBy = field
	r.SortDirection = dir.normalized()
	return r
}

// WithFilters returns a copy of the request with the given filters appended.
// Filter order carries no meaning; cache keys are order independent.
func (r PagedRequest) WithFilters(filters ...Filter) PagedRequest {
	r.Filters = append(append([]Filter(nil), r.Filters...), filters...)
	return r
}

// WithSchema returns a copy of the request bound to the entity's field
// schema. Repositories call this before validation; the schema is not part
// of the wire shape.
func (r PagedRequest) WithSchema(s *Schema) PagedRequest {
	r.schema = s
	return r
}

// Schema returns the field schema attached to this request, if any.
func (r PagedRequest) Schema() *Schema {
	return r.schema
}

// Offset derives the row offset of the requested page window.
func (r PagedRequest) Offset() int {
	if r.Page <= 1 {
		return 0
	}
	return (r.Page - 1) * r.PageSize
}
