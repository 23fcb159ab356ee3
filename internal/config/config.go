package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvLogDir    = "ODBCPERF_LOG_DIR"
	EnvHistoryDB = "ODBCPERF_HISTORY_DB"
	EnvSQLDriver = "ODBCPERF_SQL_DRIVER"
)

type Config struct {
	LogDir    string
	HistoryDB string // empty disables run history
	SQLDriver string
}

// Load reads envFile (missing is fine) into the process environment and
// returns the settings not bound to a CLI flag. It must run before flags are
// parsed so ODBCPERF_* values from the file reach the flag EnvVars.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	logDir := os.Getenv(EnvLogDir)
	if logDir == "" {
		logDir = "logs"
	}

	return &Config{
		LogDir:    logDir,
		HistoryDB: os.Getenv(EnvHistoryDB),
		SQLDriver: os.Getenv(EnvSQLDriver),
	}, nil
}
