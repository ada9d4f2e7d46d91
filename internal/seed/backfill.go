package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/costbase/costbase/internal/db"
	"github.com/costbase/costbase/internal/normalize"
	"github.com/costbase/costbase/pkg/driver"
)

// BackfillNameKeys computes the normalized search key for every project row
// that does not carry one yet. The scan predicate excludes populated rows, so
// a second run touches zero rows. Updates run inside one transaction.
func (e *Engine) BackfillNameKeys(ctx context.Context) error {
	scan, err := e.db.Prepare(`SELECT id, name FROM projects WHERE name_key IS NULL OR name_key = ''`)
	if err != nil {
		return fmt.Errorf("failed to prepare name key scan: %w", err)
	}
	defer func() { _ = scan.Close() }()

	rows, err := scan.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan projects for backfill: %w", err)
	}
	if len(rows) == 0 {
		e.logger.Debug("name key backfill found no rows")
		return nil
	}

	apply := e.db.Transaction(func(q driver.Querier) error {
		update, err := q.Prepare(`UPDATE projects SET name_key = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer func() { _ = update.Close() }()

		for _, row := range rows {
			key := normalize.Key(db.AsString(row["name"]))
			if _, err := update.Run(ctx, key, db.AsInt64(row["id"])); err != nil {
				return err
			}
		}
		return nil
	})
	if err := apply(ctx); err != nil {
		return fmt.Errorf("failed to backfill name keys: %w", err)
	}

	e.logger.Info("backfilled project name keys", slog.Int("rows", len(rows)))
	return nil
}
