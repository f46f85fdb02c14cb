package main

import (
	"context"
	"net/http"
	"os"

	"ecomdash/internal/backend"
	"ecomdash/internal/cli"
	apphttp "ecomdash/internal/http"
	applog "ecomdash/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	// datasets are loaded once; every request reads the same immutable copy
	ds, err := backend.LoadDataset(context.Background(), backend.NewFactory(logger), backendCfg)
	if err != nil {
		logger.Error("Failed to load dataset", applog.FieldError, err,
			applog.FieldBackend, cfg.DataBackend,
			applog.FieldOperation, applog.OpLoad)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ds, apphttp.Options{
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimit,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting ecomdash server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		applog.FieldRecords, len(ds.Orders()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
