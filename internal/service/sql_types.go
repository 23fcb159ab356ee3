package service

import (
	"fmt"
	"strings"

	"odbcperf/internal/core"
)

const (
	DefaultFixtureSchema = "nas"
	DefaultFixtureTable  = `"data_1000000_rows.parquet"`

	// AllColumns selects every column of the fixture in one query.
	AllColumns = "ALL"
)

type sqlType struct {
	name   string
	column string
}

// sqlTypes maps each logical type to its column in the fixture table, in the
// order all-sql-types runs them.
var sqlTypes = []sqlType{
	{"BOOLEAN", "booleancol"},
	{"FLOAT", "floatcol"},
	{"DOUBLE", "doublecol"},
	{"INT", "intcol"},
	{"BIGINT", "bigintcol"},
	{"DATE", "datecol"},
	{"TIME", "timecol"},
	{"TIMESTAMP", "timestampcol"},
	{"VARCHAR", "varcharcol"},
	{AllColumns, "*"},
}

// TypeQuery is a canned per-type query against the fixture table.
type TypeQuery struct {
	Type string
	SQL  string
}

// TypeNames lists the valid type names in table order.
func TypeNames() []string {
	names := make([]string, len(sqlTypes))
	for i, t := range sqlTypes {
		names[i] = t.name
	}
	return names
}

// TypeQueries renders the whole table for schema.table.
func TypeQueries(schema, table string) []TypeQuery {
	schema, table = fixture(schema, table)
	out := make([]TypeQuery, len(sqlTypes))
	for i, t := range sqlTypes {
		out[i] = TypeQuery{Type: t.name, SQL: fmt.Sprintf("SELECT %s FROM %s.%s", t.column, schema, table)}
	}
	return out
}

// LookupTypeQuery matches typeName case-insensitively.
func LookupTypeQuery(typeName, schema, table string) (string, error) {
	want := strings.ToUpper(strings.TrimSpace(typeName))
	for _, q := range TypeQueries(schema, table) {
		if q.Type == want {
			return q.SQL, nil
		}
	}
	return "", &core.ConfigError{
		Key:   "sql-type",
		Value: typeName,
		Valid: TypeNames(),
		Msg:   fmt.Sprintf("please select a valid data type for this test, got %q", typeName),
	}
}

func fixture(schema, table string) (string, string) {
	if schema == "" {
		schema = DefaultFixtureSchema
	}
	if table == "" {
		table = DefaultFixtureTable
	}
	return schema, table
}
