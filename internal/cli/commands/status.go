package commands

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/costbase/costbase/internal/db"
)

// coreTables are the tables reported by status, in display order. The
// expenses entry is the deprecated legacy table and is usually absent.
var coreTables = []string{
	"projects",
	"cost_items",
	"categories",
	"app_settings",
	"prompt_templates",
	"expenses",
}

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend and schema status",
		Long: `Report the active backend, its capability flags, and the presence and
row count of every core table. Useful for checking what the migration
phases have applied so far.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	ctx := context.Background()
	caps := database.Capabilities()

	cmd.Printf("Backend: %s (embedded=%t, client-server=%t)\n\n",
		caps.Name, caps.Embedded, caps.ClientServer)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Present", "Rows"})

	for _, name := range coreTables {
		exists, err := db.TableExists(ctx, database, caps, name)
		if err != nil {
			return fmt.Errorf("failed to probe %s: %w", name, err)
		}
		if !exists {
			t.AppendRow(table.Row{name, "no", "-"})
			continue
		}
		count, err := db.CountRows(ctx, database, name)
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", name, err)
		}
		t.AppendRow(table.Row{name, "yes", count})
	}

	t.Render()
	return nil
}
