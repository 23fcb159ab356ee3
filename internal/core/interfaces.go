package core

import "context"

// Connector is the contract shared by the client library strategies.
type Connector interface {
	// FetchAll runs the current SQL query and returns every row.
	FetchAll(ctx context.Context) (*ResultSet, error)
	// SetSQLQuery replaces the query used by the next FetchAll.
	SetSQLQuery(query string)
	// SessionID runs a scalar probe on the open connection.
	SessionID(ctx context.Context, probe string) (string, error)
	Library() string
	Close() error
}

// RunRepository defines storage operations for timed runs
type RunRepository interface {
	Create(run *RunRecord) error
	GetRecent(limit int) ([]RunRecord, error)
}
