// Package seed brings existing data up to date with schema changes and
// populates reference catalogs. Every operation is re-runnable: rows already
// populated are excluded by predicate, and catalogs are only touched when
// their row count falls below the expected cardinality.
package seed

import (
	"io"
	"log/slog"

	"github.com/costbase/costbase/internal/db"
)

// Engine performs column backfills, catalog seeding, and legacy table
// migration. It is invoked by the migration orchestrator's final phases and
// by the standalone CLI commands.
type Engine struct {
	db          *db.DB
	catalogPath string
	logger      *slog.Logger
}

// NewEngine builds a seed engine over an open façade. catalogPath optionally
// pins the catalog file location; when empty the default candidate paths are
// tried in order.
func NewEngine(database *db.DB, catalogPath string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{db: database, catalogPath: catalogPath, logger: logger}
}
