package query

import "testing"

func TestClampPageSize(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{name: "zero selects default", requested: 0, want: DefaultPageSize},
		{name: "negative selects default", requested: -5, want: DefaultPageSize},
		{name: "minimum", requested: 1, want: 1},
		{name: "mid range", requested: 50, want: 50},
		{name: "maximum", requested: 100, want: 100},
		{name: "just above maximum", requested: 101, want: 100},
		{name: "far above maximum", requested: 10000, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPageSize(tt.requested); got != tt.want {
				t.Errorf("ClampPageSize(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestNewRequest_Invariants(t *testing.T) {
	req := NewRequest(3, 500)
	if req.Page != 3 {
		t.Errorf("Page = %d, want 3", req.Page)
	}
	if req.PageSize != MaxPageSize {
		t.Errorf("PageSize = %d, want %d", req.PageSize, MaxPageSize)
	}
	if req.SortDirection != SortAscending {
		t.Errorf("SortDirection = %q, want %q", req.SortDirection, SortAscending)
	}
}

func TestPagedRequest_Offset(t *testing.T) {
	tests := []struct {
		page, pageSize, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
		{0, 10, 0},
	}

	for _, tt := range tests {
		req := PagedRequest{Page: tt.page, PageSize: tt.pageSize}
		if got := req.Offset(); got != tt.want {
			t.Errorf("Offset() for page %d size %d = %d, want %d", tt.page, tt.pageSize, got, tt.want)
		}
	}
}

func TestPagedRequest_Builders(t *testing.T) {
	base := NewRequest(1, 10)

	withSort := base.WithSort("name", SortDescending)
	if withSort.SortBy != "name" || withSort.SortDirection != SortDescending {
		t.Errorf("WithSort = %q %q, want name desc", withSort.SortBy, withSort.SortDirection)
	}
	if base.SortBy != "" {
		t.Error("WithSort mutated the receiver")
	}

	// Unrecognized directions normalize to ascending.
	if got := base.WithSort("name", "sideways").SortDirection; got != SortAscending {
		t.Errorf("SortDirection = %q, want %q", got, SortAscending)
	}

	withFilters := base.WithFilters(Filter{Field: "a", Operator: OpEquals, Value: 1})
	if len(withFilters.Filters) != 1 || len(base.Filters) != 0 {
		t.Errorf("WithFilters: got %d filters on copy, %d on base", len(withFilters.Filters), len(base.Filters))
	}
}

func TestPagedResult_Derived(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		page        int
		pageSize    int
		wantPages   int
		wantHasPrev bool
		wantHasNext bool
	}{
		{name: "middle page", total: 12, page: 2, pageSize: 5, wantPages: 3, wantHasPrev: true, wantHasNext: true},
		{name: "first page", total: 12, page: 1, pageSize: 5, wantPages: 3, wantHasPrev: false, wantHasNext: true},
		{name: "last page", total: 12, page: 3, pageSize: 5, wantPages: 3, wantHasPrev: true, wantHasNext: false},
		{name: "exact fit", total: 10, page: 1, pageSize: 10, wantPages: 1, wantHasPrev: false, wantHasNext: false},
		{name: "empty", total: 0, page: 1, pageSize: 10, wantPages: 0, wantHasPrev: false, wantHasNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewPagedResult([]string{}, tt.total, tt.page, tt.pageSize)
			if got := res.TotalPages(); got != tt.wantPages {
				t.Errorf("TotalPages() = %d, want %d", got, tt.wantPages)
			}
			if got := res.HasPrevious(); got != tt.wantHasPrev {
				t.Errorf("HasPrevious() = %v, want %v", got, tt.wantHasPrev)
			}
			if got := res.HasNext(); got != tt.wantHasNext {
				t.Errorf("HasNext() = %v, want %v", got, tt.wantHasNext)
			}
		})
	}
}

func TestNewPagedResult_NilItems(t *testing.T) {
	res := NewPagedResult[int](nil, 0, 1, 10)
	if res.Items == nil {
		t.Error("Items = nil, want empty slice")
	}
}
