package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by key matches nothing.
	// Callers translate it locally (e.g. into a 404); it never reaches
	// the global error handler.
	ErrNotFound = errors.New("entity not found")

	// ErrAmbiguousMatch is returned when a unique lookup matches more
	// than one row. An arbitrary row is never silently picked.
	ErrAmbiguousMatch = errors.New("ambiguous match: more than one entity satisfies the predicate")

	// ErrUnitOfWorkClosed flags an operation on a closed unit of work.
	// This is a programming error, not a runtime condition.
	ErrUnitOfWorkClosed = errors.New("unit of work is closed")
)

// CommitError wraps the store error that rejected a commit. The unit's
// staged writes are rolled back in full; none are visible afterwards.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit rejected by store: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
