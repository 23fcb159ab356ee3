package connector

import (
	"context"
	"database/sql"
	"fmt"

	"odbcperf/internal/core"
)

var sqlKeywords = keywords{
	Driver:   "Driver",
	Host:     "HOST",
	Port:     "PORT",
	User:     "UID",
	Password: "PWD",
}

// SQLConnector runs queries through the standard database/sql API.
type SQLConnector struct {
	base
	db   *sql.DB
	conn *sql.Conn
}

func NewSQLConnector(ctx context.Context, ec *core.ExecutionContext) (*SQLConnector, error) {
	params := ec.Connection
	connStr, err := ConnectionString(params, sqlKeywords)
	if err != nil {
		return nil, err
	}
	if err := checkDriver(params.DriverName()); err != nil {
		return nil, err
	}

	db, err := sql.Open(params.DriverName(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection (%s): %w", params.DriverName(), err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	params.Connected = true

	return &SQLConnector{
		base: newBase(LibrarySQL, ec),
		db:   db,
		conn: conn,
	}, nil
}

func (c *SQLConnector) FetchAll(ctx context.Context) (*core.ResultSet, error) {
	query, args, err := c.boundQuery(c.ec.Connection.DriverName())
	if err != nil {
		return nil, err
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &core.ResultSet{Columns: columns, Rows: [][]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, normalize(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *SQLConnector) SessionID(ctx context.Context, probe string) (string, error) {
	var v interface{}
	if err := c.conn.QueryRowContext(ctx, probe).Scan(&v); err != nil {
		return "", err
	}
	return scalarString(v), nil
}

func (c *SQLConnector) Close() error {
	c.ec.Connection.Connected = false
	if err := c.conn.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
