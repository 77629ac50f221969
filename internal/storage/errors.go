package storage

import "errors"

var (
	// ErrUnavailable means the persistence medium could not be opened or
	// migrated. Fatal at startup; there is no retry policy.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrConstraint is the store-level rejection of malformed data. The
	// engine validates before calling the store, so a well-behaved caller
	// never sees it.
	ErrConstraint = errors.New("constraint violation")
)
