package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"odbcperf/internal/config"
	"odbcperf/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&config.Config{LogDir: t.TempDir()})
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"odbcperf"}, args...))
	return out.String(), err
}

func TestRunFetchAllOnSQLite(t *testing.T) {
	for _, lib := range []string{"sql", "SQLX"} {
		t.Run(lib, func(t *testing.T) {
			out, err := runApp(t, "run",
				"--sql-driver", "sqlite",
				"--connection-string", ":memory:",
				"--sql-query", "SELECT 1 UNION ALL SELECT 2",
				lib, "fetch-all")
			require.NoError(t, err)
			assert.Contains(t, out, "fetch-all starting...")
			assert.Contains(t, out, "(2 rows)")
		})
	}
}

func TestRunRepeatWithParams(t *testing.T) {
	out, err := runApp(t, "run",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"--sql-query", "SELECT {n} AS n",
		"--params", `{"n": 7}`,
		"--repeat", "2",
		"--profile",
		"sql", "fetch-all")
	require.NoError(t, err)
	assert.Contains(t, out, "fetch-all [2/2] finished in")
	assert.Contains(t, out, "Runs:         2")
}

func TestRunRecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history", "runs.db")

	out, err := runApp(t, "history", "--history-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	_, err = runApp(t, "run",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"--sql-query", "SELECT 1",
		"--history-db", dbPath,
		"sqlx", "fetch-all")
	require.NoError(t, err)

	out, err = runApp(t, "history", "--history-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "TEST CASE")
	assert.Contains(t, out, "sqlx")
	assert.Contains(t, out, "fetch-all")
	assert.Contains(t, out, "SUCCESS")
}

func TestRunInvalidLibrary(t *testing.T) {
	_, err := runApp(t, "run",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"pyodbc", "fetch-all")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"pyodbc"`)
	assert.Contains(t, err.Error(), `"sql", "sqlx"`)
}

func TestRunInvalidTestCase(t *testing.T) {
	_, err := runApp(t, "run",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"sql", "fetch-some")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"fetch-all"`)
}

func TestRunMissingConnectionParameters(t *testing.T) {
	_, err := runApp(t, "run", "--host", "localhost", "sql", "fetch-all")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "missing --driver, --port, --user, --password")
}

func TestRunUnknownSessionProbeDefault(t *testing.T) {
	_, err := runApp(t, "run",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"--session-probe", "auto",
		"sql", "fetch-all")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestCheckReportsSession(t *testing.T) {
	out, err := runApp(t, "check",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"--session-probe", "SELECT 99",
		"sqlx")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected with sqlx over sqlite (connection-string)")
	assert.Contains(t, out, "Session: 99")
}

func parseRun(args ...string) (*core.ExecutionContext, error) {
	var ec *core.ExecutionContext
	cmd := runCommand(&config.Config{})
	cmd.Action = func(c *cli.Context) error {
		var err error
		ec, err = executionContextFromCLI(c)
		return err
	}
	app := &cli.App{Commands: []*cli.Command{cmd}, Writer: &bytes.Buffer{}}
	err := app.Run(append([]string{"odbcperf", "run"}, args...))
	return ec, err
}

func captureContext(t *testing.T, args ...string) *core.ExecutionContext {
	t.Helper()
	ec, err := parseRun(args...)
	require.NoError(t, err)
	return ec
}

func TestPositionalArguments(t *testing.T) {
	ec := captureContext(t, "/opt/odbc/libdriver.so", "db.local", "32010", "admin", "s3cret", "sqlx", "sql-type-int")
	assert.Equal(t, "/opt/odbc/libdriver.so", ec.Connection.Driver)
	assert.Equal(t, "db.local", ec.Connection.Host)
	assert.Equal(t, 32010, ec.Connection.Port)
	assert.Equal(t, "admin", ec.Connection.User)
	assert.Equal(t, "s3cret", ec.Connection.Password)
	assert.Equal(t, "sqlx", ec.Test.Library)
	assert.Equal(t, "sql-type-int", ec.Test.TestCase)
	assert.True(t, ec.Connection.UseSystemTrustStore)

	ec = captureContext(t, "--host", "flag.local", "--library-options", `{"StringColumnLength": 1024}`,
		"drv", "db.local", "1", "u", "p", "sql", "fetch-all")
	assert.Equal(t, "flag.local", ec.Connection.Host)
	assert.Equal(t, map[string]string{"StringColumnLength": "1024"}, ec.Connection.LibraryOptions)
}

func TestConnectionFlagsReadEnvironment(t *testing.T) {
	t.Setenv("ODBCPERF_DISABLE_CERT_VERIFICATION", "true")
	t.Setenv("ODBCPERF_USE_SYSTEM_TRUST_STORE", "false")

	ec := captureContext(t, "sql", "fetch-all")
	assert.True(t, ec.Connection.DisableCertificateVerification)
	assert.False(t, ec.Connection.UseSystemTrustStore)
}

func TestCheckSessionProbeFromEnvironment(t *testing.T) {
	t.Setenv("ODBCPERF_SESSION_PROBE", "SELECT 7")

	out, err := runApp(t, "check",
		"--sql-driver", "sqlite",
		"--connection-string", ":memory:",
		"sql")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: 7")
}

func TestPositionalArgumentErrors(t *testing.T) {
	_, err := parseRun("a", "b", "c")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = parseRun("drv", "host", "port", "u", "p", "sql", "fetch-all")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "not a number")
}

func TestTypesCommand(t *testing.T) {
	out, err := runApp(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "sql-type-BOOLEAN")
	assert.Contains(t, out, `SELECT booleancol FROM nas."data_1000000_rows.parquet"`)

	out, err = runApp(t, "types", "--fixture-schema", "s", "--fixture-table", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT * FROM s.t")
}
