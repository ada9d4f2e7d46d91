package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/costbase/costbase/internal/migrate"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all migration phases",
		Long: `Run every migration phase in order: bootstrap the core tables, add
columns, create indexes, insert default settings, migrate legacy data,
backfill derived columns, and seed catalogs.

All phases are idempotent; running migrate repeatedly is safe. Only a
bootstrap failure aborts, every later phase is best-effort.`,
		Example: `  # Migrate the embedded database
  costbase migrate

  # Migrate a PostgreSQL database
  costbase migrate --database-url postgres://localhost/costbase`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd)
		},
	}
}

func runMigrate(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	runner := migrate.NewRunner(database, newSeedEngine(database), getLogger())
	if err := runner.Run(context.Background()); err != nil {
		return err
	}

	cmd.Println("Migration complete")
	return nil
}
