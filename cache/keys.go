package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/goliatone/go-paged-query/query"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// DefaultMaxKeyLength is the rendered-key length above which ListKey falls
// back to a digest. Long free-text terms and large filter sets would
// otherwise produce keys that distributed backends handle poorly.
const DefaultMaxKeyLength = 256

// KeyGenerator derives cache keys for the repository operations. Keys must
// be deterministic: two semantically identical requests yield the same key
// no matter how the request was assembled.
type KeyGenerator interface {
	// ListKey derives the key for a paged list request.
	ListKey(entity string, req query.PagedRequest) string
	// FieldKey derives the key for a single-field lookup such as
	// GetByField, ExistsByField or CountByField.
	FieldKey(entity, op, field string, value any) string
}

// requestKeyGenerator renders requests into tagged segments:
//
//	product::P:2::PS:10::S:milk::SO:name:asc::F:brand:eq:acme|price:gte:10
//
// Filters are rendered first and then sorted, which makes the key
// independent of the order the caller supplied them in. Client-supplied
// strings are escaped so a search term or filter value embedding the
// separator cannot render as another request's key. Keys longer than
// maxLen are replaced by an xxhash digest of the full rendering, keeping
// determinism while bounding key size.
type requestKeyGenerator struct {
	maxLen int
}

// NewKeyGenerator creates the default request key generator.
func NewKeyGenerator() KeyGenerator {
	return &requestKeyGenerator{maxLen: DefaultMaxKeyLength}
}

// NewKeyGeneratorWithMaxLength creates a generator with a custom digest
// threshold. maxLen <= 0 disables the digest fallback.
func NewKeyGeneratorWithMaxLength(maxLen int) KeyGenerator {
	return &requestKeyGenerator{maxLen: maxLen}
}

func (g *requestKeyGenerator) ListKey(entity string, req query.PagedRequest) string {
	segments := []string{
		entity,
		fmt.Sprintf("P:%d", req.Page),
		fmt.Sprintf("PS:%d", req.PageSize),
	}

	if req.Search != "" {
		segments = append(segments, "S:"+escapeSegment(req.Search))
	}

	if req.SortBy != "" {
		dir := "asc"
		if req.SortDirection.IsDescending() {
			dir = "desc"
		}
		segments = append(segments, fmt.Sprintf("SO:%s:%s", escapeSegment(strings.ToLower(req.SortBy)), dir))
	}

	if len(req.Filters) > 0 {
		rendered := make([]string, len(req.Filters))
		for i, f := range req.Filters {
			rendered[i] = fmt.Sprintf("%s:%s:%s", escapeSegment(strings.ToLower(f.Field)), f.Operator, renderValue(f.Value))
		}
		sort.Strings(rendered)
		segments = append(segments, "F:"+strings.Join(rendered, "|"))
	}

	key := strings.Join(segments, KeySeparator)
	if g.maxLen > 0 && len(key) > g.maxLen {
		return entity + KeySeparator + fmt.Sprintf("H:%016x", xxhash.Sum64String(key))
	}
	return key
}

func (g *requestKeyGenerator) FieldKey(entity, op, field string, value any) string {
	return strings.Join([]string{
		entity,
		op,
		fmt.Sprintf("%s_%s", escapeSegment(strings.ToLower(field)), renderValue(value)),
	}, KeySeparator)
}

// keyEscaper neutralizes the characters the key grammar assigns meaning to.
// Without it a client-supplied string embedding the separator and a segment
// tag would render identically to a different request's key and be served
// that request's cached page. Backslash goes first so escapes themselves
// stay unambiguous.
var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, "|", `\|`, ",", `\,`)

func escapeSegment(s string) string {
	return keyEscaper.Replace(s)
}

// renderValue flattens slice values so In/NotIn filters key on their
// members, not on a Go-syntax representation. Members are escaped before
// joining, so the rendering stays injective.
func renderValue(v any) string {
	switch vv := v.(type) {
	case nil:
		return "nil"
	case []string:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = escapeSegment(e)
		}
		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = escapeSegment(fmt.Sprintf("%v", e))
		}
		return strings.Join(parts, ",")
	default:
		return escapeSegment(fmt.Sprintf("%v", v))
	}
}
