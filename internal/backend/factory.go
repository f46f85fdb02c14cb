package backend

import (
	"context"
	"fmt"

	"ecomdash/internal/dataset"
	"ecomdash/internal/dataset/csvfile"
	applog "ecomdash/internal/log"
	"ecomdash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized CSV backend",
		"orders_path", config.OrdersCSVPath,
		"geolocation_path", config.GeolocationCSVPath)

	return &BackendResult{
		Backend: csvfile.New(config.OrdersCSVPath, config.GeolocationCSVPath),
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	run, ok, err := repo.LatestImport(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("read latest import: %w", err)
	}
	if ok {
		f.logger.Info("Initialized SQLite backend",
			"db_path", config.SQLiteDBPath,
			"imported_at", run.ImportedAt,
			"order_rows", run.OrderRows,
			"location_rows", run.LocationRows)
	} else {
		f.logger.Warn("SQLite snapshot is empty, run ecomdash-import to fill it",
			"db_path", config.SQLiteDBPath)
	}

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

// LoadDataset creates the configured backend and loads the dataset from it.
// The backend is released before returning since the dataset is held in
// memory.
func LoadDataset(ctx context.Context, f Factory, config Config) (*dataset.Dataset, error) {
	res, err := f.CreateBackend(ctx, config)
	if err != nil {
		return nil, err
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	ds, err := dataset.Load(ctx, res.Backend, res.Backend)
	if err != nil {
		return nil, fmt.Errorf("load %s dataset: %w", config.Type, err)
	}
	return ds, nil
}
