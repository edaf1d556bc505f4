package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"autoboard/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

// API process entrypoint.
// serve runs the HTTP API; migrate and reindex are one-shot maintenance jobs.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "autoboard",
		Short:        "Vehicle classified listings service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newReindexCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.BuildAPI(cmd.Context())
			if err != nil {
				return fmt.Errorf("bootstrap api: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "api shutdown close failed: %v\n", err)
				}
			}()
			return app.Run(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the listing schema",
		RunE: withMaintenance(func(cmd *cobra.Command, m *bootstrap.Maintenance) error {
			if err := m.Migrate(); err != nil {
				return fmt.Errorf("migrate schema: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
			return err
		}),
	}
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Push every active listing to the search index",
		RunE: withMaintenance(func(cmd *cobra.Command, m *bootstrap.Maintenance) error {
			synced, err := m.Reindex(cmd.Context())
			if err != nil {
				return fmt.Errorf("reindex listings: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d listings\n", synced)
			return err
		}),
	}
}

func withMaintenance(run func(cmd *cobra.Command, m *bootstrap.Maintenance) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		m, err := bootstrap.BuildMaintenance(cmd.Context())
		if err != nil {
			return fmt.Errorf("bootstrap maintenance: %w", err)
		}
		defer m.Close()
		return run(cmd, m)
	}
}
