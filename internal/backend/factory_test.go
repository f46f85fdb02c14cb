package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecomdash/internal/config"
	"ecomdash/internal/core"
	applog "ecomdash/internal/log"
	"ecomdash/internal/storage"

	"github.com/shopspring/decimal"
)

const (
	ordersCSV = "order_id,order_approved_at,payment_value,product_category_name_english,product_id,customer_id,customer_unique_id,customer_state,customer_city,review_score,geolocation_lat,geolocation_lng\n" +
		"o1,2018-01-01 10:00:00,10.50,toys,p1,c1,u1,SP,sao paulo,5,-23.5,-46.6\n" +
		"o2,2018-01-03 11:00:00,4.50,books,p2,c2,u2,RJ,rio de janeiro,4,-22.9,-43.2\n"
	geoCSV = "customer_unique_id,geolocation_lat,geolocation_lng,customer_state,customer_city\n" +
		"u1,-23.5,-46.6,SP,sao paulo\n"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "memory"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:        config.BackendSQLite,
		OrdersCSVPath:      "a.csv",
		GeolocationCSVPath: "b.csv",
		SQLiteDBPath:       "c.db",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "c.db" || cfg.OrdersCSVPath != "a.csv" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"csv", Config{Type: CSVBackend, OrdersCSVPath: "a", GeolocationCSVPath: "b"}, ""},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "c"}, ""},
		{"unknown", Config{Type: "memory"}, "invalid backend type"},
		{"csv without orders", Config{Type: CSVBackend, GeolocationCSVPath: "b"}, "orders CSV path"},
		{"csv without geolocation", Config{Type: CSVBackend, OrdersCSVPath: "a"}, "geolocation CSV path"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "csv" || got[1] != "sqlite" {
		t.Fatalf("GetBackendTypeStrings() = %v", got)
	}
}

func TestLoadDatasetFromCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Type:               CSVBackend,
		OrdersCSVPath:      writeFile(t, dir, "all_data.csv", ordersCSV),
		GeolocationCSVPath: writeFile(t, dir, "customer_plotmap.csv", geoCSV),
	}

	ds, err := LoadDataset(context.Background(), NewFactory(quietLogger()), cfg)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if len(ds.Orders()) != 2 || len(ds.Locations()) != 1 {
		t.Fatalf("unexpected dataset: %d orders, %d locations", len(ds.Orders()), len(ds.Locations()))
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	cfg := Config{
		Type:               CSVBackend,
		OrdersCSVPath:      filepath.Join(t.TempDir(), "missing.csv"),
		GeolocationCSVPath: filepath.Join(t.TempDir(), "missing_geo.csv"),
	}
	if _, err := LoadDataset(context.Background(), NewFactory(quietLogger()), cfg); err == nil {
		t.Fatal("expected error for missing files")
	}
}

func TestLoadDatasetFromSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ecomdash.db")

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	_, err = repo.ReplaceSnapshot(context.Background(), storage.Snapshot{
		OrdersSource:      "all_data.csv",
		GeolocationSource: "customer_plotmap.csv",
		Orders: []core.OrderRecord{
			{OrderID: "o1", ApprovedAt: core.NewTimestamp(2018, 1, 1, 10, 0, 0), PaymentValue: decimal.RequireFromString("10.5")},
		},
		Locations: []core.GeoPoint{{CustomerUniqueID: "u1", Lat: -23.5, Lng: -46.6}},
	})
	if err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ds, err := LoadDataset(context.Background(), NewFactory(quietLogger()), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if len(ds.Orders()) != 1 || !ds.Orders()[0].PaymentValue.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected orders: %+v", ds.Orders())
	}
}
