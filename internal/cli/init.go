// Package cli provides the initialization shared by cmd/thot,
// cmd/thot-worker and cmd/thotctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thot/internal/config"
	"thot/internal/log"
	"thot/internal/notify"
	"thot/internal/storage"
)

// SetupLogger creates the process logger for component at the given level
// and installs it as the slog default.
func SetupLogger(component, level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository at dbPath, applying migrations.
// Exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// NewNotifier mails through SMTP when it is configured and only logs
// otherwise.
func NewNotifier(cfg *config.Config, logger *log.Logger) notify.Notifier {
	if !cfg.SMTPEnabled() {
		logger.Info("SMTP disabled, notifications will only be logged")
		return notify.NewLogNotifier(logger)
	}
	logger.Info("SMTP notifications enabled", "host", cfg.SMTPHost, "recipients", len(cfg.AlertRecipients))
	return notify.NewEmailNotifier(notify.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		From:       cfg.SenderEmail,
		Recipients: cfg.AlertRecipients,
	}, logger)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. On the
// signal cleanup runs with a context bounded by timeout, then the returned
// channel is closed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
