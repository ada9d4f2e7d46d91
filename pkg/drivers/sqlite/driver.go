// Package sqlite provides the embedded single-file backend driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/costbase/costbase/pkg/driver"
)

func init() {
	driver.Register("sqlite", func(cfg driver.Config, logger *slog.Logger) (driver.Driver, error) {
		return Open(cfg, logger)
	})
}

// Driver implements driver.Driver for the embedded engine. It runs against a
// local file over a single connection with write-ahead logging enabled, so
// writers serialize naturally at the engine level.
type Driver struct {
	driver.BaseSQLDriver
}

// Open opens the embedded database at cfg.Path, creating the parent
// directory if missing. Use ":memory:" as the path for an in-memory database.
func Open(cfg driver.Config, logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	logger.Debug("opening sqlite database", slog.String("path", path))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One physical connection. In-memory databases also depend on this:
	// a second connection would see a different database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	d := &Driver{
		BaseSQLDriver: driver.BaseSQLDriver{
			DB:     db,
			Logger: logger,
			Caps: driver.Capabilities{
				Name:        "sqlite",
				Embedded:    true,
				Placeholder: driver.PlaceholderQuestion,
			},
		},
	}
	d.BaseSQLDriver.Translate = translate
	return d, nil
}

// translate passes statement text through unchanged; the embedded engine
// executes `?` markers natively and exposes last-insert-rowid for INSERTs.
func translate(query string, recoverID bool) (string, driver.InsertIDMode) {
	if recoverID && driver.IsInsert(query) {
		return query, driver.InsertIDNative
	}
	return query, driver.InsertIDNone
}

var pragmaName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Pragma reads an engine pragma by name and returns its value.
func (d *Driver) Pragma(ctx context.Context, name string) (sql.NullString, error) {
	if d.DB == nil {
		return sql.NullString{}, fmt.Errorf("database connection not established")
	}
	if !pragmaName.MatchString(name) {
		return sql.NullString{}, fmt.Errorf("invalid pragma name %q", name)
	}

	var value sql.NullString
	err := d.DB.QueryRowContext(ctx, "PRAGMA "+name).Scan(&value)
	if err == sql.ErrNoRows {
		return sql.NullString{}, nil
	}
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to read pragma %s: %w", name, err)
	}
	return value, nil
}

// Ensure Driver implements the driver interface.
var _ driver.Driver = (*Driver)(nil)
