/*
errors.go - Error taxonomy for the stock count service

PURPOSE:
  All error types in one place. The API layer maps these to HTTP statuses:

    *ValidationError  -> 400  (bad input, no I/O was performed)
    *ConstraintError  -> 409  (store-level rejection: FK, unique, check)
    ErrNotReady       -> 500  (request before the pool was bootstrapped)
    anything else     -> 500  (connection loss, unexpected store failure)

USAGE:
  Check with errors.Is / errors.As:

    var verr *inventory.ValidationError
    if errors.As(err, &verr) { ... verr.Fields ... }
*/
package inventory

import (
	"errors"
	"strings"
)

// ErrNotReady is returned when a request arrives before the connection pool
// and schema bootstrap completed.
var ErrNotReady = errors.New("pool not ready")

// ValidationError reports missing or malformed input fields. It is always
// produced before any I/O: a request failing validation writes nothing.
type ValidationError struct {
	// Fields holds one human-readable message per offending field,
	// e.g. "item_name required" or "location must be \"bar\" or \"cooler\"".
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

// ConstraintError reports a store-level rejection of an otherwise
// well-formed write: missing foreign key, unique conflict, check violation.
// The underlying driver message is passed through.
type ConstraintError struct {
	Kind string // "foreign key", "unique", "check", "constraint"
	Err  error
}

func (e *ConstraintError) Error() string {
	return "constraint violation (" + e.Kind + "): " + e.Err.Error()
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsConstraint returns true if the store rejected the write on a constraint.
func IsConstraint(err error) bool {
	var cerr *ConstraintError
	return errors.As(err, &cerr)
}
