// Package db provides the unified data-access façade. It selects one backend
// driver at process start based on configuration and re-exports its
// operations plus capability flags, so all higher layers are
// backend-agnostic.
package db

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/costbase/costbase/internal/config"
	"github.com/costbase/costbase/pkg/driver"

	// Registered backends.
	_ "github.com/costbase/costbase/pkg/drivers/postgres"
	_ "github.com/costbase/costbase/pkg/drivers/sqlite"
)

// DB is the process-wide data-access façade. Construct it once with Open and
// pass it explicitly to the migration orchestrator and the application;
// there is no ambient global.
type DB struct {
	driver.Driver
	caps   driver.Capabilities
	logger *slog.Logger
}

// Open selects and connects the backend: a configured connection URL selects
// the client-server engine, otherwise the embedded engine opens its file
// under the data directory.
func Open(cfg *config.Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dcfg := driver.Config{
		Type:     cfg.BackendType(),
		Path:     cfg.ResolveDatabasePath(),
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.MaxConns,
	}

	drv, err := driver.Open(dcfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", dcfg.Type, err)
	}

	caps := drv.Capabilities()
	logger.Info("database backend selected",
		slog.String("backend", caps.Name),
		slog.Bool("embedded", caps.Embedded),
	)

	return &DB{Driver: drv, caps: caps, logger: logger}, nil
}

// Wrap builds a façade around an already-open driver. Used by tests that
// inject fakes or in-memory backends.
func Wrap(drv driver.Driver, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DB{Driver: drv, caps: drv.Capabilities(), logger: logger}
}

// Capabilities reports the active backend capability descriptor.
func (d *DB) Capabilities() driver.Capabilities {
	return d.caps
}

// Embedded reports whether the active backend is the in-process engine.
func (d *DB) Embedded() bool {
	return d.caps.Embedded
}

// ClientServer reports whether the active backend is the pooled network
// engine.
func (d *DB) ClientServer() bool {
	return d.caps.ClientServer
}
