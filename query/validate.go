package query

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNoSchema is returned when a request is validated without a field schema
// attached. Repositories attach the schema before validating.
var ErrNoSchema = errors.New("query: request has no field schema attached")

// Validate checks the request against its bounds and its attached field
// schema. All violations are aggregated into a single error rather than
// stopping at the first; a nil return means the request is executable.
// Validate performs no I/O.
func (r PagedRequest) Validate() error {
	if r.schema == nil {
		return ErrNoSchema
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page,
			validation.Required.Error("must be greater than 0"),
			validation.Min(1).Error("must be greater than 0"),
		),
		validation.Field(&r.PageSize,
			validation.Required.Error(fmt.Sprintf("must be between 1 and %d", MaxPageSize)),
			validation.Min(1).Error(fmt.Sprintf("must be between 1 and %d", MaxPageSize)),
			validation.Max(MaxPageSize).Error(fmt.Sprintf("must be between 1 and %d", MaxPageSize)),
		),
		validation.Field(&r.Search,
			validation.Length(0, MaxSearchLength).Error(fmt.Sprintf("must be at most %d characters", MaxSearchLength)),
		),
		validation.Field(&r.SortBy,
			validation.Length(0, MaxSortFieldLength).Error(fmt.Sprintf("must be at most %d characters", MaxSortFieldLength)),
			validation.By(r.checkSortField),
		),
		validation.Field(&r.Filters, validation.By(r.checkFilters)),
	)
}

// checkSortField requires sortBy, when present, to resolve to a field the
// schema flags as sortable.
func (r PagedRequest) checkSortField(any) error {
	if r.SortBy == "" {
		return nil
	}
	f, ok := r.schema.Lookup(r.SortBy)
	if !ok {
		return fmt.Errorf("field %q is not part of the %s schema", r.SortBy, r.schema.Entity())
	}
	if !f.Sortable {
		return fmt.Errorf("field %q is not sortable", r.SortBy)
	}
	return nil
}

// checkFilters verifies every filter names a filterable field, uses a known
// operator, and carries a value when its operator needs one. Problems across
// all filters are reported together.
func (r PagedRequest) checkFilters(any) error {
	var problems []string
	for _, f := range r.Filters {
		if f.Field == "" {
			problems = append(problems, "filter is missing a field name")
			continue
		}
		fld, ok := r.schema.Lookup(f.Field)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("field %q is not part of the %s schema", f.Field, r.schema.Entity()))
		case !fld.Filterable:
			problems = append(problems, fmt.Sprintf("field %q is not filterable", f.Field))
		}
		if !f.Operator.Valid() {
			problems = append(problems, fmt.Sprintf("field %q uses unknown operator %q", f.Field, f.Operator))
			continue
		}
		if f.Operator.RequiresValue() && f.Value == nil {
			problems = append(problems, fmt.Sprintf("field %q requires a value for operator %q", f.Field, f.Operator))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}
