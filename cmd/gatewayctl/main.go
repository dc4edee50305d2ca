// Command gatewayctl runs maintenance tasks against a gateway database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/app"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/worker"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Maintenance commands for the wallee gateway",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(purgeWebhookLogsCmd())
	rootCmd.AddCommand(archiveCmd())
	rootCmd.AddCommand(syncPendingCmd())
	rootCmd.AddCommand(syncTerminalsCmd())
	rootCmd.AddCommand(testConnectionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads configuration, builds the gateway and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := cfg.Logger.NewLogger()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the settings record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(context.Context, *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			})
		},
	}
}

func purgeWebhookLogsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge-webhook-logs",
		Short: "Delete webhook logs older than the given number of days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.WebhookLogs.PurgeOlderThan(ctx, time.Now().AddDate(0, 0, -days))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d webhook logs\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "retention in days")
	return cmd
}

func archiveCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive finished transactions older than the given number of days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				cleanup := worker.NewCleanupWorker(a.WebhookLogs, a.Transactions, time.Hour, 0, days, a.Logger)
				result, err := cleanup.RunOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %d transactions\n", result.ArchivedTransactions)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "age in days")
	return cmd
}

func syncPendingCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "sync-pending",
		Short: "Pull the remote state of open transactions once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				sync := worker.NewSyncWorker(a.Transactions, a.Reconciler, time.Minute, batch, a.Logger)
				changed := sync.RunOnce(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "%d transactions changed status\n", changed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 100, "maximum transactions to sync")
	return cmd
}

func syncTerminalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-terminals",
		Short: "Import every terminal of the configured space",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Terminals.SyncAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d terminals\n", n)
				return nil
			})
		},
	}
}

func testConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check the stored credentials against the processor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Settings.TestConnection(ctx)
				if err != nil {
					return err
				}
				if !result.Success {
					return fmt.Errorf("connection failed: %s", result.Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "connected to space %q (%s)\n", result.SpaceName, result.SpaceState)
				return nil
			})
		},
	}
}
