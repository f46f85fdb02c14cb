// Command ecomdash-import copies the CSV datasets into the SQLite snapshot
// read by the dashboard when DATA_BACKEND=sqlite. With -enqueue the import
// is handed to ecomdash-worker through RabbitMQ instead.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecomdash/internal/amqp"
	"ecomdash/internal/cli"
	applog "ecomdash/internal/log"
	"ecomdash/internal/worker"
)

func main() {
	var (
		ordersPath = flag.String("orders", "", "orders CSV path (default ORDERS_CSV_PATH)")
		geoPath    = flag.String("geolocation", "", "geolocation CSV path (default GEOLOCATION_CSV_PATH)")
		enqueue    = flag.Bool("enqueue", false, "publish an import request for ecomdash-worker instead of importing")
		export     = flag.Bool("export", false, "export the full-range report to Google Sheets after the import")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentImport)
	cfg := cli.LoadAndValidateImportConfig(logger)

	if *ordersPath == "" {
		*ordersPath = cfg.OrdersCSVPath
	}
	if *geoPath == "" {
		*geoPath = cfg.GeolocationCSVPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := amqp.NewImportRequest(*ordersPath, *geoPath, *export)

	if *enqueue {
		if cfg.AMQPURL == "" {
			logger.Error("AMQP_URL is required with -enqueue")
			os.Exit(1)
		}
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		if err := client.PublishImportRequest(ctx, req); err != nil {
			logger.Error("Failed to publish import request", applog.FieldError, err,
				applog.FieldOperation, applog.OpPublish)
			os.Exit(1)
		}
		logger.Info("Import request queued",
			"orders_path", req.OrdersPath,
			"geolocation_path", req.GeolocationPath,
			"queue", cfg.AMQPQueue)
		return
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var exporter worker.ReportExporter
	if *export {
		if e := cli.InitSheetsExporter(ctx, logger, cfg); e != nil {
			exporter = e
		}
	}

	started := time.Now()
	if err := worker.NewImportWorker(repo, exporter, nil).HandleImportRequest(ctx, req); err != nil {
		logger.Error("Import failed", applog.FieldError, err, applog.FieldOperation, applog.OpImport)
		os.Exit(1)
	}
	logger.Info("Import finished",
		"db_path", cfg.SQLiteDBPath,
		applog.FieldDuration, time.Since(started).Milliseconds())
}
