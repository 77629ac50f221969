package backend

import (
	"ledger/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the opened store and its cleanup function.
type Result struct {
	Store   services.Store
	Cleanup CleanupFunc
}

// Kind represents the type of store backing the ledger.
type Kind string

const (
	SQLiteKind Kind = "sqlite"
	MemoryKind Kind = "memory"
)

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// IsValid returns true if the kind is a known store type.
func (k Kind) IsValid() bool {
	switch k {
	case SQLiteKind, MemoryKind:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to open a store.
type Config struct {
	Kind Kind

	// SQLite specific
	SQLiteDBPath string
}
