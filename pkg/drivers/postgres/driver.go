// Package postgres provides the client-server backend driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/costbase/costbase/pkg/driver"
)

// defaultMaxConns bounds the connection pool when the config leaves it unset.
const defaultMaxConns = 10

func init() {
	driver.Register("postgres", func(cfg driver.Config, logger *slog.Logger) (driver.Driver, error) {
		return Open(cfg, logger)
	})
}

// Driver implements driver.Driver for PostgreSQL over a bounded connection
// pool. Statement text authored with `?` markers is rewritten to `$1..$n`
// before execution, and bare INSERTs get a RETURNING clause appended so the
// generated primary key can be read back.
type Driver struct {
	driver.BaseSQLDriver
}

// Open connects to the server at cfg.URL.
func Open(cfg driver.Config, logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres connection URL not specified")
	}

	logger.Debug("connecting to postgres")

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return New(db, logger), nil
}

// New wraps an existing connection pool. Used by Open and by tests that
// substitute a mock pool.
func New(db *sql.DB, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Driver{
		BaseSQLDriver: driver.BaseSQLDriver{
			DB:     db,
			Logger: logger,
			Caps: driver.Capabilities{
				Name:                 "postgres",
				ClientServer:         true,
				Placeholder:          driver.PlaceholderDollar,
				NeedsReturning:       true,
				AddColumnIfNotExists: true,
			},
		},
	}
	d.BaseSQLDriver.Translate = translate
	return d
}

// translate rewrites placeholders and arranges insert-id retrieval. Callers
// inserting into tables without a surrogate id column opt out via
// driver.WithoutInsertID, since the appended clause would reference a column
// the table does not have.
func translate(query string, recoverID bool) (string, driver.InsertIDMode) {
	rewritten := rewritePlaceholders(query)
	if recoverID && driver.IsInsert(rewritten) && !hasReturning(rewritten) {
		return rewritten + " RETURNING id", driver.InsertIDReturning
	}
	// An explicit RETURNING clause belongs to the caller; read it with
	// All or Get instead of Run.
	return rewritten, driver.InsertIDNone
}

// Pragma is a no-op on the client-server engine.
func (d *Driver) Pragma(_ context.Context, _ string) (sql.NullString, error) {
	return sql.NullString{}, nil
}

// Ensure Driver implements the driver interface.
var _ driver.Driver = (*Driver)(nil)
