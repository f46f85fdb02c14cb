// Package dataset holds the two input datasets for the lifetime of the
// process. A Dataset is built once at startup and is read-only afterwards,
// so it can be shared by concurrent HTTP handlers without locking.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ecomdash/internal/analytics"
	"ecomdash/internal/core"
)

type Dataset struct {
	orders    []core.OrderRecord
	locations []core.GeoPoint
	minDate   time.Time
	maxDate   time.Time
	hasDates  bool
}

// Load reads both sources concurrently and returns the immutable dataset.
// Any source error is fatal for the caller.
func Load(ctx context.Context, orders OrderSource, geo GeoSource) (*Dataset, error) {
	var (
		records []core.OrderRecord
		points  []core.GeoPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = orders.LoadOrders(gctx)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		points, err = geo.LoadGeolocation(gctx)
		if err != nil {
			return fmt.Errorf("load geolocation: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := New(records, points)
	logLoadSummary(ctx, ds)
	return ds, nil
}

// New builds a dataset from already loaded rows. The orders are copied and
// sorted by approval time, unapproved orders last.
func New(records []core.OrderRecord, points []core.GeoPoint) *Dataset {
	orders := make([]core.OrderRecord, len(records))
	copy(orders, records)
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i].ApprovedAt, orders[j].ApprovedAt
		if a.Valid() != b.Valid() {
			return a.Valid()
		}
		return a.Before(b.Time)
	})

	locations := make([]core.GeoPoint, len(points))
	copy(locations, points)

	ds := &Dataset{orders: orders, locations: locations}
	ds.minDate, ds.maxDate, ds.hasDates = analytics.DateBounds(orders)
	return ds
}

// Orders returns the order records. Callers must treat the slice as
// read-only.
func (d *Dataset) Orders() []core.OrderRecord {
	return d.orders
}

// Locations returns the geolocation rows. Callers must treat the slice as
// read-only.
func (d *Dataset) Locations() []core.GeoPoint {
	return d.locations
}

// DateRange returns the approval date span of the orders, the default
// filter range of the dashboard.
func (d *Dataset) DateRange() (min, max time.Time, ok bool) {
	return d.minDate, d.maxDate, d.hasDates
}

func logLoadSummary(ctx context.Context, d *Dataset) {
	var unapproved, noCategory, noScore int
	for _, r := range d.orders {
		if !r.ApprovedAt.Valid() {
			unapproved++
		}
		if r.Category == "" {
			noCategory++
		}
		if !r.HasReviewScore() {
			noScore++
		}
	}
	slog.InfoContext(ctx, "Dataset loaded",
		"orders", len(d.orders),
		"locations", len(d.locations),
		"without_approval", unapproved,
		"without_category", noCategory,
		"without_review_score", noScore,
		"min_date", d.minDate.Format(time.DateOnly),
		"max_date", d.maxDate.Format(time.DateOnly))
	if analytics.SpansMultipleYears(d.orders) {
		slog.WarnContext(ctx, "Orders span several years; the monthly trend merges equal months across years",
			"min_year", d.minDate.Year(),
			"max_year", d.maxDate.Year())
	}
}
