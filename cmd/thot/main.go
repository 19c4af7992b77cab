package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"thot/internal/amqp"
	"thot/internal/analytics"
	"thot/internal/cache"
	"thot/internal/cli"
	apphttp "thot/internal/http"
	"thot/internal/log"
	"thot/internal/services"
)

func main() {
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	reportCache := cache.NewLRUCache[any](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.CacheTTL)

	reports := analytics.NewService(repo, reportCache, logger)

	// The publisher must stay an untyped nil when AMQP is off.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		amqpClient = client
		publisher = client
	} else {
		logger.Info("AMQP disabled, expense limit checks will not run")
	}

	recorder := services.NewTransactionService(repo, publisher, reports, logger)
	srv := apphttp.NewServer(":"+cfg.Port, repo, recorder, reports, logger)

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting thot server", "port", cfg.Port, "amqp", cfg.AMQPEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
