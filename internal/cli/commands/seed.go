package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed reference catalogs",
		Long: `Converge each reference table to its expected cardinality: tables at
or above the expected count are left untouched, a partial seed is treated
as stale and fully replaced, an empty table receives the canonical set.

Template records come from the catalog file (catalog.yaml or
seeds/catalog.yaml, or --catalog-path); a missing file skips template
seeding with a warning.`,
		Example: `  # Seed catalogs on the embedded database
  costbase seed

  # Seed from an explicit catalog file
  costbase seed --catalog-path ./fixtures/catalog.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedCatalogs(cmd)
		},
	}
}

func runSeedCatalogs(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := newSeedEngine(database).SeedCatalogs(context.Background()); err != nil {
		return err
	}

	cmd.Println("Catalogs seeded")
	return nil
}
