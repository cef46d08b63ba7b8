package pagedrepo

import (
	"errors"
	"fmt"
)

// Kind classifies a repository failure.
type Kind int

const (
	// KindValidation marks requests rejected before any I/O. The message
	// aggregates every violation.
	KindValidation Kind = iota + 1
	// KindExecution marks failures from the cache, storage or mapping.
	// The underlying cause is logged, never attached here.
	KindExecution
)

// Error is the only error type the repositories return. Validation errors
// carry the aggregated human-readable message; execution errors carry a
// generic one, with the cause available in the logs only.
type Error struct {
	Entity  string
	Op      string
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.Op, e.Message)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}

// IsExecution reports whether err is a cache/storage/mapping failure.
func IsExecution(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindExecution
}
