package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"ecomdash/internal/amqp"
	"ecomdash/internal/dataset"
	"ecomdash/internal/dataset/csvfile"
	"ecomdash/internal/report"
	"ecomdash/internal/storage"
)

// SnapshotStore is the part of the SQLite repository the worker needs.
type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, s storage.Snapshot) (storage.ImportRun, error)
	LatestImport(ctx context.Context) (storage.ImportRun, bool, error)
	Ping(ctx context.Context) error
}

// ReportExporter publishes a full report somewhere outside the process.
type ReportExporter interface {
	Export(ctx context.Context, s report.Summary) error
}

// SourceFunc opens the two datasets named in an import request.
type SourceFunc func(ordersPath, geolocationPath string) (dataset.OrderSource, dataset.GeoSource)

// CSVSources opens both datasets as CSV files.
func CSVSources(ordersPath, geolocationPath string) (dataset.OrderSource, dataset.GeoSource) {
	src := csvfile.New(ordersPath, geolocationPath)
	return src, src
}

// ImportWorker copies CSV datasets into the SQLite snapshot and optionally
// exports the resulting full-range report.
type ImportWorker struct {
	store    SnapshotStore
	exporter ReportExporter
	sources  SourceFunc
}

// NewImportWorker creates a worker. exporter may be nil, in which case
// export requests are skipped with a warning.
func NewImportWorker(store SnapshotStore, exporter ReportExporter, sources SourceFunc) *ImportWorker {
	if sources == nil {
		sources = CSVSources
	}
	return &ImportWorker{store: store, exporter: exporter, sources: sources}
}

// HandleImportRequest processes a single import request from AMQP.
// Failures that a redelivery cannot fix are marked amqp.Permanent.
func (w *ImportWorker) HandleImportRequest(ctx context.Context, req *amqp.ImportRequest) error {
	started := time.Now()
	slog.InfoContext(ctx, "Processing import request",
		"orders_path", req.OrdersPath,
		"geolocation_path", req.GeolocationPath,
		"export_report", req.ExportReport,
		"requested_at", req.RequestedAt)

	if err := req.Validate(); err != nil {
		return amqp.Permanent(err)
	}

	orders, geo := w.sources(req.OrdersPath, req.GeolocationPath)
	ds, err := dataset.Load(ctx, orders, geo)
	if err != nil {
		return classifyReadError(fmt.Errorf("read datasets: %w", err))
	}

	run, err := w.store.ReplaceSnapshot(ctx, storage.Snapshot{
		OrdersSource:      req.OrdersPath,
		GeolocationSource: req.GeolocationPath,
		Orders:            ds.Orders(),
		Locations:         ds.Locations(),
	})
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	if req.ExportReport {
		if err := w.export(ctx, ds); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Import request completed",
		"import_id", run.ID,
		"order_rows", run.OrderRows,
		"location_rows", run.LocationRows,
		"duration", time.Since(started))
	return nil
}

// classifyReadError marks dataset failures caused by the files themselves,
// which stay broken until someone replaces them.
func classifyReadError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, dataset.ErrMissingColumn),
		errors.Is(err, dataset.ErrEmptyFile):
		return amqp.Permanent(err)
	}
	return err
}

func (w *ImportWorker) export(ctx context.Context, ds *dataset.Dataset) error {
	if w.exporter == nil {
		slog.WarnContext(ctx, "Report export requested but no exporter is configured")
		return nil
	}
	summary := report.Build(ds, time.Time{}, time.Time{})
	if err := w.exporter.Export(ctx, summary); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// StartupCheck verifies the database is reachable and logs the state of
// the snapshot when the worker starts.
func (w *ImportWorker) StartupCheck(ctx context.Context) error {
	if err := w.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping snapshot store: %w", err)
	}
	run, ok, err := w.store.LatestImport(ctx)
	if err != nil {
		return fmt.Errorf("read latest import: %w", err)
	}
	if !ok {
		slog.WarnContext(ctx, "Snapshot is empty, waiting for the first import request")
		return nil
	}
	slog.InfoContext(ctx, "Snapshot found",
		"import_id", run.ID,
		"orders_source", run.OrdersSource,
		"order_rows", run.OrderRows,
		"imported_at", run.ImportedAt)
	return nil
}
