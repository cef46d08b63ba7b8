// Package query defines the request, filter, schema and result types shared
// by every paged lookup, plus the validation and text-normalization rules
// applied to them.
//
// # Request lifecycle
//
// A client builds a PagedRequest (page, page size, optional search, sort and
// filters). The repository attaches the entity's Schema with WithSchema and
// calls Validate, which checks every constraint at once and aggregates all
// violations into a single error:
//
//	req := query.NewRequest(1, 25).
//		WithSearch("milk").
//		WithSort("name", query.SortAscending)
//
//	if err := req.WithSchema(productSchema).Validate(); err != nil {
//		// err lists every violation, e.g. unknown sort field and a
//		// filter missing its value
//	}
//
// # Schemas
//
// A Schema is the per-entity allow-list: which fields may be searched,
// sorted or filtered, and which storage column each maps to. Declare one per
// entity at startup:
//
//	productSchema := query.NewSchema("product",
//		query.Field{Name: "name", Searchable: true, Sortable: true, Filterable: true},
//		query.Field{Name: "price", Type: query.FieldNumber, Sortable: true, Filterable: true},
//	).WithDefaultSort("name", query.SortAscending)
//
// Fields absent from the schema fail validation; nothing is silently
// skipped downstream.
//
// # Search normalization
//
// Free-text search is case- and diacritic-insensitive. A Normalizer folds
// the search term; where the comparison runs depends on whether it also
// implements SQLNormalizer. The default FoldNormalizer matches fetched rows
// application-side with FoldContains, so the property holds on any storage
// engine. UnaccentNormalizer pushes the full fold down to Postgres;
// LowerNormalizer pushes case-only matching down anywhere, leaving accents
// significant.
package query
