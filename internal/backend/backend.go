// Package backend selects and constructs the expense store for a deployment.
package backend

import (
	"expensed/internal/storage"
)

// CleanupFunc releases the resources a store holds.
type CleanupFunc func() error

// Result contains the constructed store and its cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Config holds configuration for store creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	PostgresDSN  string
	PGMinConns   int32
	PGMaxConns   int32
	PGRequireSSL bool
}

// Type represents the kind of store backing the service.
type Type string

const (
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
