package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveModePrecedence(t *testing.T) {
	full := ConnectionParameters{
		Driver:   "/opt/driver.so",
		Host:     "localhost",
		Port:     32010,
		User:     "dremio",
		Password: "secret",
	}

	tests := []struct {
		name   string
		mutate func(p *ConnectionParameters)
		want   ConnectionMode
	}{
		{"discrete parameters", func(p *ConnectionParameters) {}, ModeParameters},
		{"dsn wins over parameters", func(p *ConnectionParameters) { p.DSN = "Arrow" }, ModeDSN},
		{"connection string wins over dsn", func(p *ConnectionParameters) {
			p.DSN = "Arrow"
			p.ConnectionString = "DSN=Other"
		}, ModeConnectionString},
		{"dsn alone", func(p *ConnectionParameters) { *p = ConnectionParameters{DSN: "Arrow"} }, ModeDSN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := full
			tt.mutate(&p)
			mode, err := ResolveMode(&p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestResolveModeMissingParameters(t *testing.T) {
	_, err := ResolveMode(&ConnectionParameters{Host: "localhost", Port: 32010})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"--driver", "--user", "--password"}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "--connection-string")
	assert.Contains(t, err.Error(), "--dsn")
}

func TestResolveModeEmpty(t *testing.T) {
	_, err := ResolveMode(&ConnectionParameters{ConnectionString: "   "})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Missing, len(RequiredParameters))
}

func TestConfigErrorListsValidOptions(t *testing.T) {
	err := InvalidValue("odbc-library", "turbo", "sql", "sqlx")
	assert.Equal(t, `received an invalid value "turbo" for "odbc-library". Valid options are: "sql", "sqlx"`, err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSQLParserBind(t *testing.T) {
	p := NewSQLParser()

	sql, args, err := p.Bind("SELECT * FROM t WHERE id = {id} AND name = {name}", "odbc",
		map[string]interface{}{"id": 7, "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?", sql)
	assert.Equal(t, []interface{}{7, "x"}, args)

	sql, _, err = p.Bind("SELECT {a}, {b}", "pgx", map[string]interface{}{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, "SELECT $1, $2", sql)

	sql, args, err = p.Bind("SELECT {fn NOW()}", "odbc", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT {fn NOW()}", sql)
	assert.Nil(t, args)
}

func TestSQLParserMissingValues(t *testing.T) {
	_, _, err := NewSQLParser().Bind("SELECT {a}, {b}", "odbc", map[string]interface{}{"a": 1})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"b"}, cfgErr.Missing)
}

func TestSQLParserLeavesBracesWithoutValues(t *testing.T) {
	for _, q := range []string{"SELECT '{abc}' AS j", `SELECT '{"a": {b}}'`} {
		sql, args, err := NewSQLParser().Bind(q, "odbc", nil)
		require.NoError(t, err)
		assert.Equal(t, q, sql)
		assert.Nil(t, args)
	}
}

func TestResultSetRowCount(t *testing.T) {
	var rs *ResultSet
	assert.Zero(t, rs.RowCount())
	assert.Equal(t, 2, (&ResultSet{Rows: [][]interface{}{{1}, {2}}}).RowCount())
}
