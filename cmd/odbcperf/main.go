package main

import (
	"fmt"
	"os"

	"odbcperf/internal/config"
	"odbcperf/internal/logger"

	"github.com/urfave/cli/v2"

	// Drivers
	_ "github.com/alexbrainman/odbc"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	// 1. Load Config (.env first so flag EnvVars see it)
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	logFile, err := logger.Init(cfg.LogDir)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	// 3. Run
	err = newApp(cfg).Run(os.Args)
	if err != nil {
		logger.Error.Println(err)
	}
	logFile.Close()
	if err != nil {
		os.Exit(1)
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "odbcperf",
		Usage: "time full result-set fetches over ODBC with database/sql or sqlx",
		Commands: []*cli.Command{
			runCommand(cfg),
			checkCommand(cfg),
			typesCommand,
			historyCommand(cfg),
		},
	}
}
