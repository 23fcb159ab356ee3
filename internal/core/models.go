package core

import (
	"time"
)

// DefaultSQLDriver is the database/sql driver both connectors open unless told otherwise.
const DefaultSQLDriver = "odbc"

// ConnectionParameters holds everything needed to open the single connection of a run.
// Only Connected changes after the connector has attached.
type ConnectionParameters struct {
	SQLDriver        string // database/sql driver name
	ConnectionString string
	DSN              string

	Driver   string // ODBC driver path or registered name
	Host     string
	Port     int
	User     string
	Password string

	UseEncryption                  bool
	DisableCertificateVerification bool
	TrustStore                     string
	TrustStorePassword             string
	UseSystemTrustStore            bool
	Token                          string

	LibraryOptions map[string]string

	Connected bool
}

// DriverName returns the database/sql driver, falling back to ODBC.
func (p *ConnectionParameters) DriverName() string {
	if p.SQLDriver == "" {
		return DefaultSQLDriver
	}
	return p.SQLDriver
}

type TestParameters struct {
	Library  string
	TestCase string
	SQLQuery string // rewritten by the per-type test cases

	// Values bound to {name} placeholders in SQLQuery
	QueryParams map[string]interface{}

	FixtureSchema string
	FixtureTable  string
}

// ExecutionContext pairs connection and test parameters. Connectors keep a
// pointer to it so the query can change between fetches without reconnecting.
type ExecutionContext struct {
	Connection *ConnectionParameters
	Test       *TestParameters
}

// ResultSet is a fully materialized query result.
type ResultSet struct {
	Columns []string
	Rows    [][]interface{}
}

func (r *ResultSet) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

type RunRecord struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Library    string    `json:"library"`
	SQLDriver  string    `json:"sql_driver"`
	TestCase   string    `json:"test_case"`
	SQLText    string    `json:"sql_text"`
	RowCount   int64     `json:"row_count"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	ErrorMsg   string    `json:"error_message"`
}
