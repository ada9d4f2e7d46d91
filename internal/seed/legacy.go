package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/costbase/costbase/internal/db"
)

// MigrateLegacyExpenses copies rows from the deprecated expenses table into
// cost_items, renaming title to label and defaulting a missing category.
// Two guards make it safe to run every start: the whole phase is skipped when
// the legacy table is absent or when the target already holds at least as
// many rows as the source, and the copy itself excludes rows already present
// in the target by natural key (project id plus label).
func (e *Engine) MigrateLegacyExpenses(ctx context.Context) error {
	caps := e.db.Capabilities()

	exists, err := db.TableExists(ctx, e.db, caps, "expenses")
	if err != nil {
		return err
	}
	if !exists {
		e.logger.Debug("no legacy expenses table, nothing to migrate")
		return nil
	}

	source, err := db.CountRows(ctx, e.db, "expenses")
	if err != nil {
		return err
	}
	target, err := db.CountRows(ctx, e.db, "cost_items")
	if err != nil {
		return err
	}
	if target >= source {
		e.logger.Debug("legacy expenses already migrated",
			slog.Int64("source", source),
			slog.Int64("target", target),
		)
		return nil
	}

	copyStmt, err := e.db.Prepare(`
		INSERT INTO cost_items (project_id, category_code, label, amount_cents, created_at)
		SELECT x.project_id, COALESCE(x.category_code, 'other'), x.title, x.amount_cents, x.created_at
		FROM expenses x
		WHERE NOT EXISTS (
			SELECT 1 FROM cost_items c
			WHERE c.project_id = x.project_id AND c.label = x.title
		)`)
	if err != nil {
		return fmt.Errorf("failed to prepare legacy expense copy: %w", err)
	}
	defer func() { _ = copyStmt.Close() }()

	res, err := copyStmt.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate legacy expenses: %w", err)
	}

	e.logger.Info("migrated legacy expenses",
		slog.Int64("rows", res.Changes),
		slog.Int64("source", source),
	)
	return nil
}
