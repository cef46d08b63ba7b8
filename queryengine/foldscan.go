package queryengine

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/goliatone/go-paged-query/query"
)

// FoldScanLimit caps the candidate window fetched when search matching runs
// application-side. Requests whose filters match more rows than this see
// search results over the first FoldScanLimit candidates in sort order.
const FoldScanLimit = 1000

// NeedsFoldScan reports whether the request's search term must be matched
// over the fetched rows rather than in SQL: a non-empty term, no custom
// search predicate, at least one searchable field, and a normalizer with no
// SQL expression.
func (e *Engine) NeedsFoldScan(req query.PagedRequest) bool {
	if strings.TrimSpace(req.Search) == "" || e.searchHook != nil {
		return false
	}
	if _, ok := e.normalizer.(query.SQLNormalizer); ok {
		return false
	}
	return len(e.schema.SearchableFields()) > 0
}

// MatchRow reports whether one fetched row matches the search term: a
// folded contains test against every searchable text column, equality on
// the rendered value for searchable non-text columns. Mirrors what
// applySearch expresses in SQL for pushdown normalizers.
func (e *Engine) MatchRow(row any, term string) bool {
	rv := reflect.Indirect(reflect.ValueOf(row))
	if rv.Kind() != reflect.Struct {
		return false
	}

	cols := columnValues(rv)
	for _, f := range e.schema.SearchableFields() {
		v, ok := cols[f.Column]
		if !ok {
			continue
		}
		if f.Type == query.FieldText {
			s, ok := v.(string)
			if ok && query.FoldContains(s, term) {
				return true
			}
			continue
		}
		if fmt.Sprintf("%v", v) == term {
			return true
		}
	}
	return false
}

// FilterSearch keeps the candidates that match the request's search term,
// preserving their order. Apply it to rows fetched under NeedsFoldScan.
func FilterSearch[T any](e *Engine, candidates []T, term string) []T {
	term = strings.TrimSpace(term)
	if term == "" {
		return candidates
	}
	matched := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if e.MatchRow(c, term) {
			matched = append(matched, c)
		}
	}
	return matched
}

// columnValues maps a model struct's bun column names to field values.
// Anonymous fields (bun.BaseModel) carry table metadata, not columns.
func columnValues(rv reflect.Value) map[string]any {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		out[columnName(sf)] = fv.Interface()
	}
	return out
}

// columnName resolves a struct field's bun column: the tag's first segment
// when present, otherwise the snake_cased field name, matching bun's own
// derivation for simple names.
func columnName(sf reflect.StructField) string {
	tag := sf.Tag.Get("bun")
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	if tag != "" && tag != "-" {
		return tag
	}

	rs := []rune(sf.Name)
	var b strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rs[i-1]) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
