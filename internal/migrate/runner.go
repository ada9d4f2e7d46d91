// Package migrate advances the database schema at process startup through a
// fixed sequence of named, idempotent phases. There is no migration-version
// table: whether a phase already ran is detected by catalog introspection or
// by classifying "already exists" errors as benign.
package migrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/costbase/costbase/internal/db"
	"github.com/costbase/costbase/internal/seed"
)

// Phase is a named, ordered unit of schema or data change. Every phase must
// be safe to execute against a database already at or past it.
type Phase struct {
	Name string
	run  func(ctx context.Context, log *slog.Logger) error
}

// Runner executes all phases in declaration order, single-threaded, before
// the application begins serving. Only the bootstrap phase is fatal; every
// later phase is best-effort and independently recoverable on the next
// start.
type Runner struct {
	db     *db.DB
	seeder *seed.Engine
	logger *slog.Logger
	phases []Phase
}

// NewRunner builds the orchestrator over an open façade. The seed engine
// backs the final data phases.
func NewRunner(database *db.DB, seeder *seed.Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Runner{db: database, seeder: seeder, logger: logger}
	r.phases = []Phase{
		{Name: "display-order-columns", run: r.displayOrderColumns},
		{Name: "project-name-key", run: r.projectNameKey},
		{Name: "indexes", run: r.indexes},
		{Name: "default-settings", run: r.defaultSettings},
		{Name: "legacy-expenses", run: func(ctx context.Context, log *slog.Logger) error {
			return r.seeder.MigrateLegacyExpenses(ctx)
		}},
		{Name: "backfill-name-keys", run: func(ctx context.Context, log *slog.Logger) error {
			return r.seeder.BackfillNameKeys(ctx)
		}},
		{Name: "seed-catalogs", run: func(ctx context.Context, log *slog.Logger) error {
			return r.seeder.SeedCatalogs(ctx)
		}},
	}
	return r
}

// Phases returns the names of the post-bootstrap phases in execution order.
func (r *Runner) Phases() []string {
	names := make([]string, len(r.phases))
	for i, p := range r.phases {
		names[i] = p.Name
	}
	return names
}

// Run executes the bootstrap phase and then every later phase in order.
// Bootstrap failure aborts startup; any later phase failure abandons that
// phase, is logged, and the next phase proceeds.
func (r *Runner) Run(ctx context.Context) error {
	log := r.logger.With(slog.String("migration_run", uuid.NewString()))

	if err := r.bootstrap(ctx, log.With(slog.String("phase", "bootstrap"))); err != nil {
		return fmt.Errorf("bootstrap phase failed: %w", err)
	}

	for _, p := range r.phases {
		plog := log.With(slog.String("phase", p.Name))
		plog.Debug("running migration phase")
		if err := p.run(ctx, plog); err != nil {
			plog.Error("migration phase abandoned", slog.String("error", err.Error()))
			continue
		}
	}
	return nil
}

// bootstrap creates all core tables. On the client-server path the script is
// split and CREATE TABLE statements run as a prioritized sub-pass before
// index creation, because indexes reference tables from the same batch.
func (r *Runner) bootstrap(ctx context.Context, log *slog.Logger) error {
	script := bootstrapScript(r.db.Capabilities())

	if r.db.Embedded() {
		if err := r.db.Exec(ctx, script); err != nil {
			return fmt.Errorf("failed to create core tables: %w", err)
		}
		return nil
	}

	stmts := prioritizeCreateTables(splitStatements(script))
	for _, stmt := range stmts {
		if err := r.db.Exec(ctx, stmt); err != nil {
			if IsBenign(err) {
				log.Info("bootstrap statement already applied", slog.String("detail", err.Error()))
				continue
			}
			return fmt.Errorf("failed to create core tables: %w", err)
		}
	}
	return nil
}

// applyStatements runs a phase's statements one by one: benign errors are
// logged and skipped, anything else abandons the phase.
func (r *Runner) applyStatements(ctx context.Context, log *slog.Logger, stmts []string) error {
	for _, stmt := range stmts {
		if err := r.db.Exec(ctx, stmt); err != nil {
			if IsBenign(err) {
				log.Info("statement already applied", slog.String("detail", err.Error()))
				continue
			}
			return fmt.Errorf("failed to apply statement: %w", err)
		}
	}
	return nil
}

// addColumnIfMissing applies an ADD COLUMN change idempotently: engines with
// IF NOT EXISTS use it directly, the rest probe the catalog first and still
// tolerate a duplicate-column race.
func (r *Runner) addColumnIfMissing(ctx context.Context, log *slog.Logger, table, column, definition string) error {
	caps := r.db.Capabilities()

	if !caps.AddColumnIfNotExists {
		exists, err := db.ColumnExists(ctx, r.db, caps, table, column)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	return r.applyStatements(ctx, log, []string{addColumn(caps, table, column, definition)})
}

func (r *Runner) displayOrderColumns(ctx context.Context, log *slog.Logger) error {
	for _, table := range []string{"projects", "cost_items", "prompt_templates"} {
		if err := r.addColumnIfMissing(ctx, log, table, "display_order", "INTEGER NOT NULL DEFAULT 0"); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) projectNameKey(ctx context.Context, log *slog.Logger) error {
	return r.addColumnIfMissing(ctx, log, "projects", "name_key", "TEXT")
}

func (r *Runner) indexes(ctx context.Context, log *slog.Logger) error {
	return r.applyStatements(ctx, log, indexStatements())
}

// defaultSettings ensures the single configuration row exists. Presence is
// probed rather than upserted so both engines share one code path.
func (r *Runner) defaultSettings(ctx context.Context, log *slog.Logger) error {
	stmt, err := r.db.Prepare(`SELECT id FROM app_settings WHERE id = 1`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	row, err := stmt.Get(ctx)
	if err != nil {
		return err
	}
	if row != nil {
		return nil
	}

	ins, err := r.db.Prepare(`INSERT INTO app_settings (id) VALUES (1)`)
	if err != nil {
		return err
	}
	defer func() { _ = ins.Close() }()

	if _, err := ins.Run(ctx); err != nil {
		if IsBenign(err) {
			log.Info("default settings row already present", slog.String("detail", err.Error()))
			return nil
		}
		return err
	}
	log.Info("inserted default settings row")
	return nil
}
