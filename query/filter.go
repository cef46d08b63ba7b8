package query

import "fmt"

// Operator enumerates the comparison operators a Filter may apply.
type Operator string

const (
	OpEquals             Operator = "eq"
	OpNotEquals          Operator = "neq"
	OpContains           Operator = "contains"
	OpNotContains        Operator = "ncontains"
	OpStartsWith         Operator = "startswith"
	OpEndsWith           Operator = "endswith"
	OpGreaterThan        Operator = "gt"
	OpGreaterThanOrEqual Operator = "gte"
	OpLessThan           Operator = "lt"
	OpLessThanOrEqual    Operator = "lte"
	OpIn                 Operator = "in"
	OpNotIn              Operator = "nin"
	OpIsNull             Operator = "isnull"
	OpIsNotNull          Operator = "notnull"
)

// Valid reports whether the operator is a member of the supported set.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals,
		OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
		OpIn, OpNotIn, OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

// RequiresValue reports whether the operator needs a non-nil comparison
// value. Only the nullity checks operate without one.
func (o Operator) RequiresValue() bool {
	return o != OpIsNull && o != OpIsNotNull
}

// Filter is a single field comparison. Filters on a request are AND-combined
// with each other and with the search predicate.
type Filter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// NewFilter builds a Filter, enforcing the operator invariants up front:
// the operator must be known, and every operator except the nullity checks
// requires a non-nil value. Validation re-checks both at request time.
func NewFilter(field string, op Operator, value any) (Filter, error) {
	if !op.Valid() {
		return Filter{}, fmt.Errorf("query: unknown filter operator %q", op)
	}
	if op.RequiresValue() && value == nil {
		return Filter{}, fmt.Errorf("query: operator %q on field %q requires a value", op, field)
	}
	return Filter{Field: field, Operator: op, Value: value}, nil
}

// MustFilter is NewFilter for statically known inputs; it panics on error.
// Intended for schema declarations and tests, not for client input.
func MustFilter(field string, op Operator, value any) Filter {
	f, err := NewFilter(field, op, value)
	if err != nil {
		panic(err)
	}
	return f
}

// Range produces the inclusive [min, max] pair of filters for a field:
// one GreaterThanOrEqual and one LessThanOrEqual comparison.
func Range(field string, min, max any) []Filter {
	return []Filter{
		{Field: field, Operator: OpGreaterThanOrEqual, Value: min},
		{Field: field, Operator: OpLessThanOrEqual, Value: max},
	}
}
