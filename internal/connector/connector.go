package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"odbcperf/internal/core"
)

const (
	LibrarySQL  = "sql"
	LibrarySQLX = "sqlx"
)

// Libraries lists the selectable client libraries.
var Libraries = []string{LibrarySQL, LibrarySQLX}

// New connects with the named client library. Exactly one connection is
// opened here and reused by every later call on the returned connector.
func New(ctx context.Context, library string, ec *core.ExecutionContext) (core.Connector, error) {
	if ec == nil || ec.Connection == nil || ec.Test == nil {
		return nil, fmt.Errorf("connector: incomplete execution context")
	}

	switch strings.ToLower(strings.TrimSpace(library)) {
	case LibrarySQL:
		return NewSQLConnector(ctx, ec)
	case LibrarySQLX:
		return NewSQLXConnector(ctx, ec)
	default:
		return nil, core.InvalidValue("odbc-library", library, Libraries...)
	}
}

// base holds what both strategies share: the execution context and the
// placeholder parser.
type base struct {
	library string
	ec      *core.ExecutionContext
	parser  *core.SQLParser
}

func newBase(library string, ec *core.ExecutionContext) base {
	return base{library: library, ec: ec, parser: core.NewSQLParser()}
}

func (b *base) Library() string {
	return b.library
}

func (b *base) SetSQLQuery(query string) {
	b.ec.Test.SQLQuery = query
}

// boundQuery resolves {name} placeholders of the current query for driver.
func (b *base) boundQuery(driver string) (string, []interface{}, error) {
	query := b.ec.Test.SQLQuery
	if strings.TrimSpace(query) == "" {
		return "", nil, &core.ConfigError{Key: "sql-query", Msg: "no SQL query to run; pass --sql-query or pick a sql-type test case"}
	}
	return b.parser.Bind(query, driver, b.ec.Test.QueryParams)
}

func checkDriver(name string) error {
	registered := sql.Drivers()
	for _, d := range registered {
		if d == name {
			return nil
		}
	}
	sort.Strings(registered)
	return core.InvalidValue("sql-driver", name, registered...)
}

// normalize turns driver byte slices into strings so results print and compare naturally.
func normalize(values []interface{}) []interface{} {
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values
}

func scalarString(v interface{}) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

// DefaultSessionProbe returns a query reporting the server-side session id
// for drivers that have a well known one.
func DefaultSessionProbe(sqlDriver string) string {
	switch strings.ToLower(sqlDriver) {
	case "sqlserver", "mssql":
		return "SELECT @@SPID"
	case "mysql":
		return "SELECT CONNECTION_ID()"
	case "postgres", "pgx":
		return "SELECT pg_backend_pid()"
	default:
		return ""
	}
}
