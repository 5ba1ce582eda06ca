// Package cli is the securecheck command-line tool: schema bootstrap, CSV
// bulk load and ad-hoc catalog queries.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"securecheck/internal/config"
	"securecheck/internal/db"
	"securecheck/internal/logger"
	"securecheck/internal/metrics"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

// Version information (set at build time).
var Version = "dev"

// opener returns a database and the function that releases it.
type opener func(ctx context.Context) (*bun.DB, func(), error)

type deps struct {
	open    opener
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRootCmd builds the command tree against the database named by the
// loaded configuration.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&deps{
		open:    openFromConfig,
		logger:  logger.New(),
		metrics: metrics.NewMock(),
	})
}

func newRootCmd(d *deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "securecheck",
		Short: "SecureCheck - traffic stop analytics",
		Long: `securecheck manages the traffic stop database: it creates the schema,
seeds the officer accounts, bulk loads CSV exports and runs the analytics
catalog from the terminal.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newInitCommand(d))
	rootCmd.AddCommand(newLoadCommand(d))
	rootCmd.AddCommand(newQueriesCommand())
	rootCmd.AddCommand(newQueryCommand(d))
	rootCmd.AddCommand(newViolationsCommand(d))

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

func openFromConfig(ctx context.Context) (*bun.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	database := db.Open(cfg.Database.DSN())
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("failed to connect to %s:%s/%s: %w",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, err)
	}
	return database, func() { db.Close(database) }, nil
}
