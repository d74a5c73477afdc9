package datasource

import (
	"context"

	"github.com/ekaya-inc/rental-insights/pkg/models"
)

// ConnectionTester tests database connectivity.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the database is reachable with valid credentials.
	// Returns nil if connection is healthy, error otherwise.
	TestConnection(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// SnapshotReader reads the rental store tables the reports need.
type SnapshotReader interface {
	ConnectionTester

	// LoadSnapshot copies every table inside a single transaction so that all
	// reports of a run see the same consistent state. It never writes.
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Rows is the cursor shape shared by pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Querier runs a read query inside the snapshot transaction. Each adapter
// supplies one bound to its own driver.
type Querier interface {
	Query(ctx context.Context, query string) (Rows, error)
}
