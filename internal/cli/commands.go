package cli

import (
	"fmt"

	"securecheck/internal/catalog"
	"securecheck/internal/db"
	"securecheck/internal/ingest"
	"securecheck/internal/officer"

	"github.com/spf13/cobra"
)

func newInitCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the schema and seed the officer accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, release, err := d.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			if err := db.Migrate(ctx, database); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
			n, err := officer.NewRepository(database, d.metrics).Seed(ctx, officer.SampleSeeds)
			if err != nil {
				return fmt.Errorf("failed to seed officers: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema ready, %d officer(s) seeded\n", n)
			return nil
		},
	}
}

func newLoadCommand(d *deps) *cobra.Command {
	var (
		batchSize int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "load <file.csv>",
		Short: "Bulk load a traffic stop CSV export",
		Long: `Load parses the CSV file, rejects malformed rows and inserts the rest in
one transaction. Vehicles already in the database are skipped, so loading
the same file twice changes nothing.`,
		Example: `  securecheck load traffic_stops.csv
  securecheck load traffic_stops.csv --batch-size 1000 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ctx := cmd.Context()
			database, release, err := d.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			report, err := ingest.NewLoader(database, d.logger, d.metrics).
				WithBatchSize(batchSize).
				LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "Rows per INSERT statement")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table|json)")
	return cmd
}

func newQueriesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "queries",
		Short: "List the analytics catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return renderDefinitions(cmd.OutOrStdout(), catalog.All(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table|json)")
	return cmd
}

func newQueryCommand(d *deps) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query <slug>",
		Short: "Run one catalog query",
		Example: `  securecheck query peak-traffic-stop-time
  securecheck query overview-metrics --format json`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			defs := catalog.All()
			slugs := make([]string, len(defs))
			for i, def := range defs {
				slugs[i] = def.Slug
			}
			return slugs, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			q, err := catalog.ParseQuery(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, release, err := d.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			res, err := catalog.New(database, d.logger, d.metrics).Execute(ctx, q)
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), res, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table|json)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{formatTable, formatJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newViolationsCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "violations",
		Short: "List the distinct violations on record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, release, err := d.open(ctx)
			if err != nil {
				return err
			}
			defer release()

			violations, err := catalog.New(database, d.logger, d.metrics).Violations(ctx)
			if err != nil {
				return err
			}
			for _, v := range violations {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
