package cache

import (
	"strings"
	"testing"

	"github.com/goliatone/go-paged-query/pkg/testsupport"
	"github.com/goliatone/go-paged-query/query"
)

// KeyScenario is one rendered-key expectation loaded from testdata.
type KeyScenario struct {
	Name        string         `json:"name"`
	Entity      string         `json:"entity"`
	Page        int            `json:"page"`
	PageSize    int            `json:"pageSize"`
	Search      string         `json:"search"`
	SortBy      string         `json:"sortBy"`
	SortDir     string         `json:"sortDirection"`
	Filters     []query.Filter `json:"filters"`
	ExpectedKey string         `json:"expectedKey"`
}

type keyFixtures struct {
	Scenarios []KeyScenario `json:"scenarios"`
}

func (s KeyScenario) request() query.PagedRequest {
	req := query.PagedRequest{
		Page:          s.Page,
		PageSize:      s.PageSize,
		Search:        s.Search,
		SortBy:        s.SortBy,
		SortDirection: query.SortDirection(s.SortDir),
		Filters:       s.Filters,
	}
	return req
}

func TestListKey_Fixtures(t *testing.T) {
	var fixtures keyFixtures
	testsupport.LoadFixtureJSON(t, "testdata/keys.json", &fixtures)

	gen := NewKeyGenerator()
	for _, sc := range fixtures.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			if got := gen.ListKey(sc.Entity, sc.request()); got != sc.ExpectedKey {
				t.Errorf("ListKey() = %q, want %q", got, sc.ExpectedKey)
			}
		})
	}
}

// Semantically identical requests share one key no matter the order their
// filters were supplied in.
func TestListKey_FilterOrderIndependent(t *testing.T) {
	gen := NewKeyGenerator()

	a := query.NewRequest(1, 10).WithFilters(
		query.Filter{Field: "price", Operator: query.OpGreaterThanOrEqual, Value: 10},
		query.Filter{Field: "brand", Operator: query.OpEquals, Value: "acme"},
		query.Filter{Field: "active", Operator: query.OpEquals, Value: true},
	)
	b := query.NewRequest(1, 10).WithFilters(
		query.Filter{Field: "active", Operator: query.OpEquals, Value: true},
		query.Filter{Field: "price", Operator: query.OpGreaterThanOrEqual, Value: 10},
		query.Filter{Field: "brand", Operator: query.OpEquals, Value: "acme"},
	)

	keyA := gen.ListKey("product", a)
	keyB := gen.ListKey("product", b)
	if keyA != keyB {
		t.Errorf("keys differ for reordered filters:\n  %q\n  %q", keyA, keyB)
	}
}

func TestListKey_DistinguishesRequests(t *testing.T) {
	gen := NewKeyGenerator()
	base := query.NewRequest(1, 10)

	variants := map[string]query.PagedRequest{
		"base":       base,
		"other page": query.NewRequest(2, 10),
		"other size": query.NewRequest(1, 20),
		"search":     base.WithSearch("milk"),
		"sorted":     base.WithSort("name", query.SortDescending),
		"filtered":   base.WithFilters(query.Filter{Field: "brand", Operator: query.OpEquals, Value: "acme"}),
	}

	seen := map[string]string{}
	for name, req := range variants {
		key := gen.ListKey("product", req)
		if prev, dup := seen[key]; dup {
			t.Errorf("variants %q and %q collide on key %q", name, prev, key)
		}
		seen[key] = name
	}
}

// Client-supplied strings may contain the key grammar's own characters; a
// term embedding the separator and a tag must not render as some other
// request's key.
func TestListKey_ClientStringsCannotForgeSegments(t *testing.T) {
	gen := NewKeyGenerator()

	t.Run("search term embedding a sort segment", func(t *testing.T) {
		forging := query.NewRequest(1, 10).WithSearch("milk::SO:name:desc")
		sorted := query.NewRequest(1, 10).WithSearch("milk").WithSort("name", query.SortDescending)

		keyA := gen.ListKey("product", forging)
		keyB := gen.ListKey("product", sorted)
		if keyA == keyB {
			t.Errorf("distinct requests collide on key %q", keyA)
		}
	})

	t.Run("filter value embedding a filter separator", func(t *testing.T) {
		forging := query.NewRequest(1, 10).WithFilters(
			query.Filter{Field: "brand", Operator: query.OpEquals, Value: "acme|price:gte:10"},
		)
		two := query.NewRequest(1, 10).WithFilters(
			query.Filter{Field: "brand", Operator: query.OpEquals, Value: "acme"},
			query.Filter{Field: "price", Operator: query.OpGreaterThanOrEqual, Value: 10},
		)

		keyA := gen.ListKey("product", forging)
		keyB := gen.ListKey("product", two)
		if keyA == keyB {
			t.Errorf("distinct requests collide on key %q", keyA)
		}
	})

	t.Run("membership member embedding the list separator", func(t *testing.T) {
		joined := query.NewRequest(1, 10).WithFilters(
			query.Filter{Field: "role", Operator: query.OpIn, Value: []string{"admin,editor"}},
		)
		split := query.NewRequest(1, 10).WithFilters(
			query.Filter{Field: "role", Operator: query.OpIn, Value: []string{"admin", "editor"}},
		)

		keyA := gen.ListKey("user", joined)
		keyB := gen.ListKey("user", split)
		if keyA == keyB {
			t.Errorf("distinct requests collide on key %q", keyA)
		}
	})

	t.Run("escaping stays deterministic", func(t *testing.T) {
		req := query.NewRequest(1, 10).WithSearch(`caf\é::S:x`)
		if a, b := gen.ListKey("product", req), gen.ListKey("product", req); a != b {
			t.Errorf("escaped key unstable: %q then %q", a, b)
		}
	})
}

func TestListKey_LongKeysDigested(t *testing.T) {
	gen := NewKeyGeneratorWithMaxLength(64)

	long := query.NewRequest(1, 10).WithSearch(strings.Repeat("caffè ", 20))
	key := gen.ListKey("product", long)

	if !strings.HasPrefix(key, "product"+KeySeparator+"H:") {
		t.Errorf("digested key = %q, want product::H: prefix", key)
	}
	if len(key) > 64 {
		t.Errorf("digested key length = %d, want <= 64", len(key))
	}

	// Digesting must stay deterministic.
	if again := gen.ListKey("product", long); again != key {
		t.Errorf("digest unstable: %q then %q", key, again)
	}
}

func TestFieldKey(t *testing.T) {
	gen := NewKeyGenerator()

	if got := gen.FieldKey("user", "get", "Email", "bob@example.com"); got != "user::get::email_bob@example.com" {
		t.Errorf("FieldKey() = %q", got)
	}
	if got := gen.FieldKey("user", "exists", "id", 42); got != "user::exists::id_42" {
		t.Errorf("FieldKey() = %q", got)
	}
}
