package query

import "strings"

// FieldType describes the storage shape of a schema field. The engine uses
// it to pick between text matching and equality when searching, and to gate
// range comparisons.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldBool   FieldType = "bool"
)

// Field declares one queryable column of an entity: its request-facing name,
// the storage column it maps to, and which request features may touch it.
type Field struct {
	// Name is the field name clients reference in search, sort and filters.
	// Matching is case-insensitive.
	Name string
	// Column is the storage column the field maps to. Empty defaults to Name.
	Column string
	// Type selects the comparison semantics for search and range operators.
	Type FieldType
	// Searchable includes the field in free-text search.
	Searchable bool
	// Sortable allows the field as a sortBy target.
	Sortable bool
	// Filterable allows the field in filter criteria.
	Filterable bool
}

// Schema is the per-entity allow-list of queryable fields plus the entity's
// default sort. Declare one Schema per entity at startup and treat it as
// immutable afterwards; every request against the entity consults it.
type Schema struct {
	entity      string
	fields      []Field
	index       map[string]Field
	defaultSort string
	defaultDir  SortDirection
}

// NewSchema declares the schema for an entity. Field names are indexed
// case-insensitively; a later duplicate name replaces an earlier one.
func NewSchema(entity string, fields ...Field) *Schema {
	s := &Schema{
		entity:     entity,
		fields:     make([]Field, 0, len(fields)),
		index:      make(map[string]Field, len(fields)),
		defaultDir: SortAscending,
	}
	for _, f := range fields {
		if f.Column == "" {
			f.Column = f.Name
		}
		if f.Type == "" {
			f.Type = FieldText
		}
		s.fields = append(s.fields, f)
		s.index[strings.ToLower(f.Name)] = f
	}
	return s
}

// WithDefaultSort sets the ordering applied when a request carries no sort.
// The field does not need to be flagged Sortable; it only needs a mapping.
// Call during declaration, before the schema is shared.
func (s *Schema) WithDefaultSort(field string, dir SortDirection) *Schema {
	s.defaultSort = field
	s.defaultDir = dir.normalized()
	return s
}

// Entity returns the name the schema was declared for.
func (s *Schema) Entity() string {
	return s.entity
}

// Fields returns a copy of the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Lookup resolves a request-facing field name case-insensitively.
func (s *Schema) Lookup(name string) (Field, bool) {
	f, ok := s.index[strings.ToLower(name)]
	return f, ok
}

// SearchableFields returns the fields participating in free-text search.
func (s *Schema) SearchableFields() []Field {
	var out []Field
	for _, f := range s.fields {
		if f.Searchable {
			out = append(out, f)
		}
	}
	return out
}

// DefaultSort resolves the fallback ordering. When no default was declared,
// the first sortable field is used; ok is false if neither exists.
func (s *Schema) DefaultSort() (Field, SortDirection, bool) {
	if s.defaultSort != "" {
		if f, ok := s.Lookup(s.defaultSort); ok {
			return f, s.defaultDir, true
		}
	}
	for _, f := range s.fields {
		if f.Sortable {
			return f, s.defaultDir, true
		}
	}
	return Field{}, s.defaultDir, false
}
