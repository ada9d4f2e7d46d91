// Package commands implements the costbase subcommands.
package commands

import (
	"io"
	"log/slog"

	"github.com/costbase/costbase/internal/config"
	"github.com/costbase/costbase/internal/db"
	"github.com/costbase/costbase/internal/seed"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

// SetRuntime installs the resolved configuration and logger for all
// subcommands. Called by the root command after configuration loads.
func SetRuntime(c *config.Config, l *slog.Logger) {
	cfg = c
	logger = l
}

func getConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return &config.Config{
		DataDir:  config.DefaultDataDir,
		MaxConns: config.DefaultMaxConns,
	}
}

func getLogger() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openDB connects the configured backend.
func openDB() (*db.DB, error) {
	return db.Open(getConfig(), getLogger())
}

// newSeedEngine builds a seed engine over an open façade.
func newSeedEngine(database *db.DB) *seed.Engine {
	return seed.NewEngine(database, getConfig().CatalogPath, getLogger())
}
