package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ecomdash/internal/core"
	"ecomdash/internal/dataset"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02 15:04:05"

// SQLiteRepository stores an imported copy of the two CSV datasets so the
// dashboard can start from a single file. It never stores derived tables.
type SQLiteRepository struct {
	db *sql.DB
}

// Snapshot is the content of one import.
type Snapshot struct {
	OrdersSource      string
	GeolocationSource string
	Orders            []core.OrderRecord
	Locations         []core.GeoPoint
}

// ImportRun describes a completed import.
type ImportRun struct {
	ID                int64
	OrdersSource      string
	GeolocationSource string
	OrderRows         int
	LocationRows      int
	ImportedAt        time.Time
}

// Ensure interface conformance
var (
	_ dataset.OrderSource = (*SQLiteRepository)(nil)
	_ dataset.GeoSource   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite snapshot ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ReplaceSnapshot swaps the stored datasets for the given ones in a single
// transaction and records the import.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, s Snapshot) (ImportRun, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportRun{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items`); err != nil {
		return ImportRun{}, fmt.Errorf("clear order items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM customer_locations`); err != nil {
		return ImportRun{}, fmt.Errorf("clear customer locations: %w", err)
	}

	if err := insertOrders(ctx, tx, s.Orders); err != nil {
		return ImportRun{}, err
	}
	if err := insertLocations(ctx, tx, s.Locations); err != nil {
		return ImportRun{}, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO import_runs (orders_source, geolocation_source, order_rows, location_rows, imported_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.OrdersSource, s.GeolocationSource, len(s.Orders), len(s.Locations), now.Format(timestampLayout))
	if err != nil {
		return ImportRun{}, fmt.Errorf("record import run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ImportRun{}, fmt.Errorf("import run id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportRun{}, fmt.Errorf("commit snapshot: %w", err)
	}

	run := ImportRun{
		ID:                id,
		OrdersSource:      s.OrdersSource,
		GeolocationSource: s.GeolocationSource,
		OrderRows:         len(s.Orders),
		LocationRows:      len(s.Locations),
		ImportedAt:        now.Truncate(time.Second),
	}
	slog.InfoContext(ctx, "Snapshot imported into SQLite",
		"import_id", run.ID,
		"order_rows", run.OrderRows,
		"location_rows", run.LocationRows)
	return run, nil
}

func insertOrders(ctx context.Context, tx *sql.Tx, orders []core.OrderRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO order_items (order_id, product_id, approved_at, payment_value, category,
		 customer_id, customer_unique_id, customer_state, customer_city, review_score, lat, lng)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare order insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range orders {
		var approved sql.NullString
		if o.ApprovedAt.Valid() {
			approved = sql.NullString{String: o.ApprovedAt.Format(timestampLayout), Valid: true}
		}
		var score sql.NullInt64
		if o.HasReviewScore() {
			score = sql.NullInt64{Int64: int64(o.ReviewScore), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			o.OrderID, o.ProductID, approved, o.PaymentValue.String(), o.Category,
			o.CustomerID, o.CustomerUniqueID, o.CustomerState, o.CustomerCity,
			score, nullFloat(o.Lat), nullFloat(o.Lng)); err != nil {
			return fmt.Errorf("insert order item %d (order %s): %w", i, o.OrderID, err)
		}
	}
	return nil
}

func insertLocations(ctx context.Context, tx *sql.Tx, points []core.GeoPoint) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO customer_locations (customer_unique_id, lat, lng, state, city) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare location insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.ExecContext(ctx, p.CustomerUniqueID, p.Lat, p.Lng, p.State, p.City); err != nil {
			return fmt.Errorf("insert location %d: %w", i, err)
		}
	}
	return nil
}

// LoadOrders implements dataset.OrderSource
func (r *SQLiteRepository) LoadOrders(ctx context.Context) ([]core.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, approved_at, payment_value, category, customer_id,
		 customer_unique_id, customer_state, customer_city, review_score, lat, lng
		 FROM order_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var out []core.OrderRecord
	for rows.Next() {
		var (
			o        core.OrderRecord
			approved sql.NullString
			payment  string
			score    sql.NullInt64
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&o.OrderID, &o.ProductID, &approved, &payment, &o.Category, &o.CustomerID,
			&o.CustomerUniqueID, &o.CustomerState, &o.CustomerCity, &score, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if approved.Valid {
			if ts, err := core.ParseTimestamp(approved.String); err == nil {
				o.ApprovedAt = ts
			}
		}
		if v, err := decimal.NewFromString(payment); err == nil {
			o.PaymentValue = v
		}
		if score.Valid {
			o.ReviewScore = int(score.Int64)
		}
		o.Lat = floatPtr(lat)
		o.Lng = floatPtr(lng)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return out, nil
}

// LoadGeolocation implements dataset.GeoSource
func (r *SQLiteRepository) LoadGeolocation(ctx context.Context) ([]core.GeoPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT customer_unique_id, lat, lng, state, city FROM customer_locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query customer locations: %w", err)
	}
	defer rows.Close()

	var out []core.GeoPoint
	for rows.Next() {
		var p core.GeoPoint
		if err := rows.Scan(&p.CustomerUniqueID, &p.Lat, &p.Lng, &p.State, &p.City); err != nil {
			return nil, fmt.Errorf("scan customer location: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer locations: %w", err)
	}
	return out, nil
}

// LatestImport returns the most recent import run. ok is false when the
// snapshot was never imported.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (run ImportRun, ok bool, err error) {
	var importedAt string
	err = r.db.QueryRowContext(ctx,
		`SELECT id, orders_source, geolocation_source, order_rows, location_rows, imported_at
		 FROM import_runs ORDER BY id DESC LIMIT 1`).
		Scan(&run.ID, &run.OrdersSource, &run.GeolocationSource, &run.OrderRows, &run.LocationRows, &importedAt)
	if err == sql.ErrNoRows {
		return ImportRun{}, false, nil
	}
	if err != nil {
		return ImportRun{}, false, fmt.Errorf("query latest import: %w", err)
	}
	if t, perr := time.Parse(timestampLayout, importedAt); perr == nil {
		run.ImportedAt = t
	} else if t, perr := time.Parse(time.RFC3339, importedAt); perr == nil {
		run.ImportedAt = t
	}
	return run, true, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
