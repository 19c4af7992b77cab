package main

import (
	"os"
	"time"

	"thot/internal/amqp"
	"thot/internal/analytics"
	"thot/internal/cli"
	"thot/internal/log"
	"thot/internal/services"
	"thot/internal/worker"
)

func main() {
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	logger.Info("Starting thot-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	notifier := cli.NewNotifier(cfg, logger)

	// The worker projects without a cache: digests run once per period.
	reports := analytics.NewService(repo, nil, logger)
	digest := services.NewDigestBuilder(repo, reports, notifier, logger)
	scheduler, err := worker.NewScheduler(cfg.DigestCron, digest, logger)
	if err != nil {
		logger.Error("Failed to create digest scheduler", log.FieldError, err.Error())
		os.Exit(1)
	}

	var consumer worker.Consumer
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
	}

	checker := services.NewLimitChecker(repo, notifier, logger)
	w := worker.New(consumer, checker.HandleExpenseRecorded, scheduler, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Worker running", "digest_cron", cfg.DigestCron, "amqp", cfg.AMQPEnabled())
	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	<-done
	logger.Info("Worker shutdown complete")
}

