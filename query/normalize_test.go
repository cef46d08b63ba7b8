package query

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "MILK", want: "milk"},
		{name: "strips acute accent", in: "Café", want: "cafe"},
		{name: "strips mixed diacritics", in: "Crème Brûlée", want: "creme brulee"},
		{name: "ascii untouched", in: "whole milk 2%", want: "whole milk 2%"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The folded comparison is symmetric: a stored "Café" matches any casing or
// accenting of the term, and vice versa.
func TestFoldContains(t *testing.T) {
	stored := "Café"

	for _, term := range []string{"cafe", "CAFE", "Café", "café"} {
		if !FoldContains(stored, term) {
			t.Errorf("FoldContains(%q, %q) = false, want true", stored, term)
		}
	}

	if FoldContains(stored, "latte") {
		t.Error(`FoldContains("Café", "latte") = true, want false`)
	}
	if !FoldContains("Whole Milk", "milk") {
		t.Error(`FoldContains("Whole Milk", "milk") = false, want true`)
	}
}

func TestNormalizers(t *testing.T) {
	t.Run("unaccent folds term fully", func(t *testing.T) {
		n := UnaccentNormalizer{}
		if got := n.Fold("Café"); got != "cafe" {
			t.Errorf("Fold(%q) = %q, want cafe", "Café", got)
		}
	})

	t.Run("lower keeps accents on both sides", func(t *testing.T) {
		n := LowerNormalizer{}
		if got := n.Fold("Café"); got != "café" {
			t.Errorf("Fold(%q) = %q, want café", "Café", got)
		}
	})

	t.Run("default folds fully but has no SQL expression", func(t *testing.T) {
		var n Normalizer = FoldNormalizer{}
		if got := n.Fold("Café"); got != "cafe" {
			t.Errorf("Fold(%q) = %q, want cafe", "Café", got)
		}
		if _, ok := n.(SQLNormalizer); ok {
			t.Error("FoldNormalizer implements SQLNormalizer, want application-side matching only")
		}
	})
}

// Both pushdown normalizers satisfy SQLNormalizer.
var (
	_ SQLNormalizer = UnaccentNormalizer{}
	_ SQLNormalizer = LowerNormalizer{}
)
