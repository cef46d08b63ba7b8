package query

import "testing"

func TestOperator_RequiresValue(t *testing.T) {
	valueFree := map[Operator]bool{OpIsNull: true, OpIsNotNull: true}

	for _, op := range []Operator{
		OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
		OpIn, OpNotIn, OpIsNull, OpIsNotNull,
	} {
		want := !valueFree[op]
		if got := op.RequiresValue(); got != want {
			t.Errorf("%q.RequiresValue() = %v, want %v", op, got, want)
		}
	}
}

func TestNewFilter(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		op      Operator
		value   any
		wantErr bool
	}{
		{name: "equals with value", field: "name", op: OpEquals, value: "milk"},
		{name: "equals without value", field: "name", op: OpEquals, value: nil, wantErr: true},
		{name: "greater than without value", field: "price", op: OpGreaterThan, value: nil, wantErr: true},
		{name: "in without value", field: "category", op: OpIn, value: nil, wantErr: true},
		{name: "is null without value", field: "deleted_at", op: OpIsNull, value: nil},
		{name: "is not null without value", field: "deleted_at", op: OpIsNotNull, value: nil},
		{name: "unknown operator", field: "name", op: Operator("almost"), value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.field, tt.op, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewFilter(%q, %q, %v) = %+v, want error", tt.field, tt.op, tt.value, f)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFilter(%q, %q, %v) error: %v", tt.field, tt.op, tt.value, err)
			}
			if f.Field != tt.field || f.Operator != tt.op {
				t.Errorf("NewFilter = %+v", f)
			}
		})
	}
}

func TestRange(t *testing.T) {
	filters := Range("price", 10, 20)

	if len(filters) != 2 {
		t.Fatalf("Range produced %d filters, want 2", len(filters))
	}
	if filters[0].Operator != OpGreaterThanOrEqual || filters[0].Value != 10 {
		t.Errorf("lower bound = %+v, want gte 10", filters[0])
	}
	if filters[1].Operator != OpLessThanOrEqual || filters[1].Value != 20 {
		t.Errorf("upper bound = %+v, want lte 20", filters[1])
	}
	for _, f := range filters {
		if f.Field != "price" {
			t.Errorf("field = %q, want price", f.Field)
		}
	}
}
