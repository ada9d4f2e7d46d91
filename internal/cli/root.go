// Package cli provides the command-line interface for costbase.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/costbase/costbase/internal/cli/commands"
	"github.com/costbase/costbase/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "costbase",
		Short: "Costbase - project cost planning data layer",
		Long: `Costbase manages the project cost planning database.

It runs against an embedded SQLite file by default, or against PostgreSQL
when a connection URL is configured, and keeps the schema current through
idempotent, probe-driven migration phases.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			commands.SetRuntime(cfg, logger)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./costbase.yaml)")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (selects the client-server backend)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for the embedded database file")
	rootCmd.PersistentFlags().String("database-path", "", "Explicit embedded database file path")
	rootCmd.PersistentFlags().String("catalog-path", "", "Catalog seed file path")
	rootCmd.PersistentFlags().Int("max-conns", 0, "Maximum PostgreSQL pool connections")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewBackfillCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
