// Package main provides the roomstats CLI: the HTTP server plus operator commands.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/roomstats/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roomstats",
		Short: "Room booking analytics dashboard",
		Long: `roomstats serves the room analytics dashboard and its exports, and
offers operator commands for the analytics cache and access tokens.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newServeCmd(),
		newWarmupCmd(),
		newBumpCmd(),
		newExportCmd(),
		newTokenCmd(),
		newJobsCmd(),
	)
	return rootCmd
}

// loadConfig reads the environment and builds the logger every command shares.
func loadConfig() (*app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg), nil
}

func redisOpt(cfg *app.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}
