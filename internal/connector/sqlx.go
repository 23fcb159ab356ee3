package connector

import (
	"context"
	"fmt"

	"odbcperf/internal/core"

	"github.com/jmoiron/sqlx"
)

var sqlxKeywords = keywords{
	Driver:   "Driver",
	Host:     "Server",
	Port:     "Port",
	User:     "Uid",
	Password: "Pwd",
}

// SQLXConnector runs queries through jmoiron/sqlx.
type SQLXConnector struct {
	base
	db   *sqlx.DB
	conn *sqlx.Conn
}

func NewSQLXConnector(ctx context.Context, ec *core.ExecutionContext) (*SQLXConnector, error) {
	params := ec.Connection
	connStr, err := ConnectionString(params, sqlxKeywords)
	if err != nil {
		return nil, err
	}
	if err := checkDriver(params.DriverName()); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(params.DriverName(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection (%s): %w", params.DriverName(), err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	params.Connected = true

	return &SQLXConnector{
		base: newBase(LibrarySQLX, ec),
		db:   db,
		conn: conn,
	}, nil
}

func (c *SQLXConnector) FetchAll(ctx context.Context) (*core.ResultSet, error) {
	// Parse with ? markers and let sqlx rebind for the driver.
	query, args, err := c.boundQuery(core.DefaultSQLDriver)
	if err != nil {
		return nil, err
	}
	query = c.conn.Rebind(query)

	rows, err := c.conn.QueryxContext(ctx, query, args...)
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
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, normalize(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *SQLXConnector) SessionID(ctx context.Context, probe string) (string, error) {
	values, err := c.conn.QueryRowxContext(ctx, probe).SliceScan()
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("session probe returned no columns")
	}
	return scalarString(values[0]), nil
}

func (c *SQLXConnector) Close() error {
	c.ec.Connection.Connected = false
	if err := c.conn.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
