// Package cli provides common CLI initialization utilities shared by
// cmd/ecomdash, cmd/ecomdash-import and cmd/ecomdash-worker.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecomdash/internal/config"
	applog "ecomdash/internal/log"
	"ecomdash/internal/report/sheets"
	"ecomdash/internal/storage"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development, or the given
// files instead. Variables already set in the process environment win.
// Errors are ignored since the file is optional in production.
func LoadEnvFile(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// SetupLogger initializes structured logging at the LOG_LEVEL level and
// sets it as the default logger. The environment is read directly since
// the configuration may not be loaded yet, so LoadEnvFile must run first.
func SetupLogger(component string) *applog.Logger {
	return applog.Setup(os.Getenv("LOG_LEVEL"), component)
}

// LoadConfig loads the configuration. Returns the config or exits the
// process when the environment cannot be parsed.
func LoadConfig(logger *applog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration load failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadAndValidateConfig loads configuration and validates it for the
// dashboard server. Returns the config or exits the process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := LoadConfig(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadAndValidateImportConfig is LoadAndValidateConfig for the import
// tooling.
func LoadAndValidateImportConfig(logger *applog.Logger) *config.Config {
	cfg := LoadConfig(logger)
	if err := cfg.ValidateImport(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitSheetsExporter builds the report exporter when a spreadsheet is
// configured. It returns nil when export is disabled and exits the process
// when the configured credentials are unusable.
func InitSheetsExporter(ctx context.Context, logger *applog.Logger, cfg *config.Config) *sheets.Exporter {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil
	}
	exporter, err := sheets.New(ctx, sheets.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		TabPrefix:       cfg.GoogleTabPrefix,
	})
	if err != nil {
		if errors.Is(err, sheets.ErrNotConfigured) {
			logger.Error("Google Sheets export misconfigured", applog.FieldError, err)
		} else {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		}
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return exporter
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
		} else {
			logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
