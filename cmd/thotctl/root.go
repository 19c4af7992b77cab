package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"thot/internal/cli"
	"thot/internal/config"
	"thot/internal/log"
	"thot/internal/storage"
)

var (
	flagDBPath   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "thotctl",
	Short:         "thot operator CLI",
	Long:          "Apply migrations, generate demo data and inspect revenue projections.",
	SilenceUsage: true,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cfg := config.Load()
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

func newLogger() *log.Logger {
	return cli.SetupLogger(log.ComponentCLI, flagLogLevel)
}

// openRepo opens the database, migrating it first.
func openRepo() (*storage.SQLiteRepository, *log.Logger, error) {
	logger := newLogger()
	repo, err := storage.NewSQLiteRepository(flagDBPath)
	if err != nil {
		return nil, nil, err
	}
	return repo, logger, nil
}
