package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ecomdash/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "snapshot.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func fptr(v float64) *float64 { return &v }

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Fatalf("expected version 1 twice, got %d and %d", v1, v2)
	}
}

func TestReplaceSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	orders := []core.OrderRecord{
		{
			OrderID: "o1", ProductID: "p1",
			ApprovedAt:   core.NewTimestamp(2018, time.January, 1, 10, 30, 0),
			PaymentValue: decimal.RequireFromString("10.50"),
			Category:     "toys", CustomerID: "c1", CustomerUniqueID: "u1",
			CustomerState: "SP", CustomerCity: "sao paulo",
			ReviewScore: 5, Lat: fptr(-23.5), Lng: fptr(-46.6),
		},
		{OrderID: "o2", PaymentValue: decimal.RequireFromString("5")},
	}
	points := []core.GeoPoint{{CustomerUniqueID: "u1", Lat: -23.5, Lng: -46.6, State: "SP", City: "sao paulo"}}

	run, err := repo.ReplaceSnapshot(ctx, Snapshot{
		OrdersSource: "orders.csv", GeolocationSource: "geo.csv",
		Orders: orders, Locations: points,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if run.OrderRows != 2 || run.LocationRows != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}

	got, err := repo.LoadOrders(ctx)
	if err != nil {
		t.Fatalf("load orders: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
	first := got[0]
	if !first.ApprovedAt.Equal(orders[0].ApprovedAt.Time) {
		t.Fatalf("approved at: %v", first.ApprovedAt)
	}
	if !first.PaymentValue.Equal(orders[0].PaymentValue) {
		t.Fatalf("payment: %s", first.PaymentValue)
	}
	if first.ReviewScore != 5 || first.Lat == nil || first.Lng == nil || *first.Lng != -46.6 {
		t.Fatalf("unexpected first order: %+v", first)
	}

	second := got[1]
	if second.ApprovedAt.Valid() || second.ReviewScore != 0 || second.Lat != nil || second.Lng != nil {
		t.Fatalf("expected null fields to survive: %+v", second)
	}

	locs, err := repo.LoadGeolocation(ctx)
	if err != nil {
		t.Fatalf("load geolocation: %v", err)
	}
	if len(locs) != 1 || locs[0] != points[0] {
		t.Fatalf("unexpected locations: %+v", locs)
	}
}

func TestReplaceSnapshotDropsPreviousData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := Snapshot{OrdersSource: "a", GeolocationSource: "b", Orders: []core.OrderRecord{{OrderID: "o1"}, {OrderID: "o2"}}}
	if _, err := repo.ReplaceSnapshot(ctx, first); err != nil {
		t.Fatalf("first import: %v", err)
	}
	second := Snapshot{OrdersSource: "c", GeolocationSource: "d", Orders: []core.OrderRecord{{OrderID: "o3"}}}
	if _, err := repo.ReplaceSnapshot(ctx, second); err != nil {
		t.Fatalf("second import: %v", err)
	}

	got, err := repo.LoadOrders(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].OrderID != "o3" {
		t.Fatalf("expected only the second snapshot, got %+v", got)
	}

	run, ok, err := repo.LatestImport(ctx)
	if err != nil || !ok {
		t.Fatalf("latest import: ok=%v err=%v", ok, err)
	}
	if run.OrdersSource != "c" || run.OrderRows != 1 {
		t.Fatalf("unexpected latest run: %+v", run)
	}
	if run.ImportedAt.IsZero() {
		t.Fatalf("imported at should be set")
	}
}

func TestLatestImportEmpty(t *testing.T) {
	repo := newTestRepo(t)
	_, ok, err := repo.LatestImport(context.Background())
	if err != nil {
		t.Fatalf("latest import: %v", err)
	}
	if ok {
		t.Fatalf("expected no import on a fresh database")
	}
}
