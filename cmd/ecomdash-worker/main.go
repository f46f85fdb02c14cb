package main

import (
	"context"
	"errors"
	"os"

	"ecomdash/internal/amqp"
	"ecomdash/internal/cli"
	applog "ecomdash/internal/log"
	"ecomdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting ecomdash-worker")

	cfg := cli.LoadAndValidateImportConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	var exporter worker.ReportExporter
	if e := cli.InitSheetsExporter(ctx, logger, cfg); e != nil {
		exporter = e
	}
	importWorker := worker.NewImportWorker(repo, exporter, nil)

	logger.Info("Performing startup snapshot check...")
	if err := importWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot check failed", applog.FieldError, err)
		// keep consuming, a later import can repair the snapshot
	}

	go func() {
		err := amqpClient.ConsumeImportRequests(ctx, importWorker.HandleImportRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			os.Exit(1)
		}
	}()

	logger.Info("Waiting for import requests", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
