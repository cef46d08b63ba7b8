package query

// PagedResult carries one page of records together with the paging metadata
// derived from the total match count. Results are either built fresh after a
// query execution or reconstructed verbatim from the cache.
type PagedResult[T any] struct {
	Items      []T `json:"items" msgpack:"items"`
	TotalCount int `json:"totalCount" msgpack:"totalCount"`
	Page       int `json:"page" msgpack:"page"`
	PageSize   int `json:"pageSize" msgpack:"pageSize"`
}

// NewPagedResult assembles a result page. Items longer than pageSize are
// kept as-is; the engine never fetches more than one window.
func NewPagedResult[T any](items []T, totalCount, page, pageSize int) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}
}

// TotalPages derives the page count, rounding up the final partial page.
func (r PagedResult[T]) TotalPages() int {
	if r.PageSize <= 0 {
		return 0
	}
	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}

// HasPrevious reports whether a page precedes the current one.
func (r PagedResult[T]) HasPrevious() bool {
	return r.Page > 1
}

// HasNext reports whether a page follows the current one.
func (r PagedResult[T]) HasNext() bool {
	return r.Page < r.TotalPages()
}
