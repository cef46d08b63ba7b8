package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases text and strips diacritic marks, so "Café" folds to
// "cafe". It is the application-side half of normalized search: the same
// folding is applied to the search term and to whatever it is compared
// against, whether that comparison runs in SQL or over fetched rows.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// FoldContains reports whether haystack contains needle after folding both
// sides. This is the row-level comparison behind the fold-scan search path.
func FoldContains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Normalizer makes substring search insensitive to representation. Fold is
// applied to the search term; where the matching happens depends on whether
// the normalizer also implements SQLNormalizer. Plain Normalizers match
// application-side: the engine fetches a bounded candidate window and
// compares folded column values row by row.
type Normalizer interface {
	// Fold normalizes the search term for comparison.
	Fold(term string) string
}

// SQLNormalizer is a Normalizer whose folding can be expressed in SQL, so
// search runs entirely in the storage engine. ContainsExpr and Fold must
// agree on how much they normalize, otherwise matching breaks one way.
type SQLNormalizer interface {
	Normalizer
	// ContainsExpr returns a bun SQL template with two placeholders: the
	// column identifier, then the "%term%" pattern argument.
	ContainsExpr() string
}

// FoldNormalizer is the default: case- and diacritic-insensitive matching
// on any storage engine, completed application-side over a bounded
// candidate window since portable SQL has no diacritic folding.
type FoldNormalizer struct{}

func (FoldNormalizer) Fold(term string) string { return Fold(term) }

// UnaccentNormalizer pushes full normalization down to Postgres using the
// unaccent extension, keeping matching case- and diacritic-insensitive
// without loading rows into memory. Requires CREATE EXTENSION unaccent.
type UnaccentNormalizer struct{}

func (UnaccentNormalizer) ContainsExpr() string { return "lower(unaccent(?)) LIKE ?" }

func (UnaccentNormalizer) Fold(term string) string { return Fold(term) }

// LowerNormalizer pushes case-only matching down with lower(), which every
// storage engine has. Accents stay significant on both sides, so matching
// is symmetric but "Café" does not match "cafe"; use the default
// FoldNormalizer or UnaccentNormalizer when diacritic insensitivity is
// required.
type LowerNormalizer struct{}

func (LowerNormalizer) ContainsExpr() string { return "lower(?) LIKE ?" }

func (LowerNormalizer) Fold(term string) string { return strings.ToLower(term) }
