package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Backfill derived columns",
		Long: `Compute the normalized search key for every project row that does not
carry one. Rows already populated are excluded by the scan predicate, so
a second run touches zero rows.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBackfill(cmd)
		},
	}
}

func runBackfill(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := newSeedEngine(database).BackfillNameKeys(context.Background()); err != nil {
		return err
	}

	cmd.Println("Backfill complete")
	return nil
}
