package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"odbcperf/internal/config"
	"odbcperf/internal/connector"
	"odbcperf/internal/core"
	"odbcperf/internal/data"
	"odbcperf/internal/logger"
	"odbcperf/internal/profiler"
	"odbcperf/internal/service"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// sessionProbeAuto picks the probe from the driver's default.
const sessionProbeAuto = "auto"

func connectionFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "library",
			Aliases: []string{"odbc-library"},
			Usage:   "client library: sql or sqlx",
			EnvVars: []string{"ODBCPERF_LIBRARY"},
		},
		&cli.StringFlag{
			Name:  "sql-driver",
			Usage: "database/sql driver under the library (odbc, sqlserver, mysql, postgres, pgx, sqlite)",
			Value: cfg.SQLDriver,
		},
		&cli.StringFlag{
			Name:    "connection-string",
			Usage:   "full connection string; takes precedence over --dsn and discrete parameters",
			EnvVars: []string{"ODBCPERF_CONNECTION_STRING"},
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "ODBC Data Source Name; takes precedence over discrete parameters",
			EnvVars: []string{"ODBCPERF_DSN"},
		},
		&cli.StringFlag{
			Name:      "driver",
			Usage:     "ODBC driver path or name",
			EnvVars:   []string{"ODBCPERF_DRIVER"},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    "host",
			EnvVars: []string{"ODBCPERF_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			EnvVars: []string{"ODBCPERF_PORT"},
		},
		&cli.StringFlag{
			Name:    "user",
			EnvVars: []string{"ODBCPERF_USER"},
		},
		&cli.StringFlag{
			Name:    "password",
			EnvVars: []string{"ODBCPERF_PASSWORD"},
		},
		&cli.BoolFlag{
			Name:  "password-prompt",
			Usage: "read the password from the terminal",
		},
		&cli.BoolFlag{
			Name:    "use-encryption",
			Usage:   "use TLS connections",
			EnvVars: []string{"ODBCPERF_USE_ENCRYPTION"},
		},
		&cli.BoolFlag{
			Name:    "disable-cert-verification",
			Usage:   "skip server certificate verification",
			EnvVars: []string{"ODBCPERF_DISABLE_CERT_VERIFICATION"},
		},
		&cli.StringFlag{
			Name:      "trust-store",
			Usage:     "trusted certificates file",
			EnvVars:   []string{"ODBCPERF_TRUST_STORE"},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    "trust-store-password",
			EnvVars: []string{"ODBCPERF_TRUST_STORE_PASSWORD"},
		},
		&cli.BoolFlag{
			Name:    "use-system-trust-store",
			Usage:   "trust the operating system certificate store (only with --use-encryption)",
			Value:   true,
			EnvVars: []string{"ODBCPERF_USE_SYSTEM_TRUST_STORE"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "bearer token",
			EnvVars: []string{"ODBCPERF_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "library-options",
			Usage:   `JSON object of extra connection attributes, e.g. '{"StringColumnLength": 1024}'`,
			EnvVars: []string{"ODBCPERF_LIBRARY_OPTIONS"},
		},
		&cli.StringFlag{
			Name:    "session-probe",
			Usage:   `query returning the server session id, or "auto" for the driver default`,
			EnvVars: []string{"ODBCPERF_SESSION_PROBE"},
		},
	}
}

func runCommand(cfg *config.Config) *cli.Command {
	flags := append(connectionFlags(cfg),
		&cli.StringFlag{
			Name:    "test-case",
			Usage:   "fetch-all, sql-type-<type> or all-sql-types",
			EnvVars: []string{"ODBCPERF_TEST_CASE"},
		},
		&cli.StringFlag{
			Name:  "sql-query",
			Usage: "SQL query to run (only affects fetch-all); {name} placeholders bind --params",
		},
		&cli.StringFlag{
			Name:  "params",
			Usage: "JSON object with values for {name} placeholders",
		},
		&cli.StringFlag{
			Name:  "fixture-schema",
			Usage: "schema of the sql-type fixture table",
			Value: service.DefaultFixtureSchema,
		},
		&cli.StringFlag{
			Name:  "fixture-table",
			Usage: "sql-type fixture table",
			Value: service.DefaultFixtureTable,
		},
		&cli.IntFlag{
			Name:  "repeat",
			Usage: "fetch this many times on the same connection",
			Value: 1,
		},
		&cli.BoolFlag{
			Name:  "profile",
			Usage: "collect call-profile statistics for every fetch",
		},
		&cli.StringFlag{
			Name:  "profile-sort",
			Usage: "sort profile statistics by tottime, calls, max or name",
			Value: profiler.SortTotal,
		},
		&cli.StringFlag{
			Name:      "profile-out",
			Usage:     "write profile statistics to this file instead of stdout",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      "cpu-profile",
			Usage:     "write a pprof CPU profile of the run",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      "history-db",
			Usage:     "sqlite file recording every timed fetch",
			Value:     cfg.HistoryDB,
			TakesFile: true,
		},
	)

	return &cli.Command{
		Name:      "run",
		Usage:     "connect once and run a test case",
		ArgsUsage: "<library> <test-case> | <driver> <host> <port> <user> <password> <library> <test-case>",
		Flags:     flags,
		Action:    runTest,
	}
}

func checkCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "open the connection and report the session, without running a query",
		ArgsUsage: "[library]",
		Flags:     connectionFlags(cfg),
		Action:    checkConnection,
	}
}

func runTest(c *cli.Context) error {
	ec, err := executionContextFromCLI(c)
	if err != nil {
		return err
	}

	if path := c.String("cpu-profile"); path != "" {
		stopCPU, err := profiler.StartCPUProfile(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := stopCPU(); err != nil {
				logger.Error.Printf("Failed to write CPU profile: %v", err)
			}
		}()
	}

	var prof *profiler.CallableProfiler
	if c.Bool("profile") {
		if !validSortKey(c.String("profile-sort")) {
			return core.InvalidValue("profile-sort", c.String("profile-sort"), profiler.SortKeys...)
		}
		prof = profiler.New()
	}

	ctx := context.Background()
	conn, err := connect(ctx, ec)
	if err != nil {
		return err
	}
	defer conn.Close()

	probe, err := sessionProbe(c.String("session-probe"), ec.Connection.DriverName())
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithOutput(c.App.Writer),
		service.WithRepeat(c.Int("repeat")),
		service.WithSessionProbe(probe),
	}
	if prof != nil {
		opts = append(opts, service.WithProfiler(prof))
	}
	if path := c.String("history-db"); path != "" {
		db, err := data.InitDB(path)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		opts = append(opts, service.WithHistory(data.NewRunRepo(db)))
	}

	runner := service.NewRunner(conn, ec, opts...)
	logger.Info.Printf("Run %s: %s with %s", runner.RunID(), ec.Test.TestCase, conn.Library())
	runErr := runner.Run(ctx, ec.Test.TestCase)

	if prof != nil {
		if out := c.String("profile-out"); out != "" {
			if err := prof.SaveResults(out, c.String("profile-sort")); err != nil {
				logger.Error.Printf("Failed to save profile: %v", err)
			}
		} else {
			prof.PrintResults(c.App.Writer, c.String("profile-sort"))
		}
	}
	return runErr
}

func checkConnection(c *cli.Context) error {
	ec, err := executionContextFromCLI(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	conn, err := connect(ctx, ec)
	if err != nil {
		return err
	}
	defer conn.Close()

	mode, _ := core.ResolveMode(ec.Connection)
	fmt.Fprintf(c.App.Writer, "Connected with %s over %s (%s)\n", conn.Library(), ec.Connection.DriverName(), mode)

	probe, err := sessionProbe(c.String("session-probe"), ec.Connection.DriverName())
	if err != nil || probe == "" {
		return err
	}
	id, err := conn.SessionID(ctx, probe)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Session: %s\n", id)
	return nil
}

func connect(ctx context.Context, ec *core.ExecutionContext) (core.Connector, error) {
	conn, err := connector.New(ctx, ec.Test.Library, ec)
	if err != nil {
		return nil, err
	}
	mode, _ := core.ResolveMode(ec.Connection)
	logger.Info.Printf("Connected with %s over %s (%s mode)", conn.Library(), ec.Connection.DriverName(), mode)
	return conn, nil
}

// executionContextFromCLI assembles the parameters from flags, falling back
// to positional arguments for anything not set as a flag.
func executionContextFromCLI(c *cli.Context) (*core.ExecutionContext, error) {
	conn := &core.ConnectionParameters{
		SQLDriver:                      c.String("sql-driver"),
		ConnectionString:               c.String("connection-string"),
		DSN:                            c.String("dsn"),
		Driver:                         c.String("driver"),
		Host:                           c.String("host"),
		Port:                           c.Int("port"),
		User:                           c.String("user"),
		Password:                       c.String("password"),
		UseEncryption:                  c.Bool("use-encryption"),
		DisableCertificateVerification: c.Bool("disable-cert-verification"),
		TrustStore:                     c.String("trust-store"),
		TrustStorePassword:             c.String("trust-store-password"),
		UseSystemTrustStore:            c.Bool("use-system-trust-store"),
		Token:                          c.String("token"),
	}
	test := &core.TestParameters{
		Library:       c.String("library"),
		TestCase:      c.String("test-case"),
		SQLQuery:      c.String("sql-query"),
		FixtureSchema: c.String("fixture-schema"),
		FixtureTable:  c.String("fixture-table"),
	}

	if err := applyPositionals(c, conn, test); err != nil {
		return nil, err
	}

	opts, err := config.ParseLibraryOptions(c.String("library-options"))
	if err != nil {
		return nil, err
	}
	conn.LibraryOptions = opts

	params, err := config.ParseQueryParams(c.String("params"))
	if err != nil {
		return nil, err
	}
	test.QueryParams = params

	if c.Bool("password-prompt") {
		fmt.Fprint(c.App.Writer, "Password: ")
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(c.App.Writer)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		conn.Password = string(pass)
	}

	return &core.ExecutionContext{Connection: conn, Test: test}, nil
}

// applyPositionals accepts "<library> <test-case>" or the long form
// "<driver> <host> <port> <user> <password> <library> <test-case>".
func applyPositionals(c *cli.Context, conn *core.ConnectionParameters, test *core.TestParameters) error {
	args := c.Args().Slice()
	switch len(args) {
	case 0:
		return nil
	case 1, 2:
		setUnless(c, "library", &test.Library, args[0])
		if len(args) == 2 {
			setUnless(c, "test-case", &test.TestCase, args[1])
		}
		return nil
	case 7:
		setUnless(c, "driver", &conn.Driver, args[0])
		setUnless(c, "host", &conn.Host, args[1])
		if !c.IsSet("port") {
			port, err := strconv.Atoi(args[2])
			if err != nil {
				return &core.ConfigError{Key: "port", Value: args[2], Msg: fmt.Sprintf("port %q is not a number", args[2])}
			}
			conn.Port = port
		}
		setUnless(c, "user", &conn.User, args[3])
		setUnless(c, "password", &conn.Password, args[4])
		setUnless(c, "library", &test.Library, args[5])
		setUnless(c, "test-case", &test.TestCase, args[6])
		return nil
	default:
		return &core.ConfigError{
			Key:   "args",
			Value: fmt.Sprint(args),
			Msg:   fmt.Sprintf("expected 2 or 7 positional arguments, got %d", len(args)),
		}
	}
}

func setUnless(c *cli.Context, flag string, dst *string, value string) {
	if !c.IsSet(flag) {
		*dst = value
	}
}

func sessionProbe(flag, sqlDriver string) (string, error) {
	if flag != sessionProbeAuto {
		return flag, nil
	}
	probe := connector.DefaultSessionProbe(sqlDriver)
	if probe == "" {
		return "", &core.ConfigError{
			Key:   "session-probe",
			Value: flag,
			Msg:   fmt.Sprintf("no default session probe for driver %q; pass the probe query", sqlDriver),
		}
	}
	return probe, nil
}

func validSortKey(key string) bool {
	for _, k := range profiler.SortKeys {
		if k == key {
			return true
		}
	}
	return false
}
