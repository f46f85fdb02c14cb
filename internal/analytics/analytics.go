// Package analytics turns a filtered set of order records into the summary
// tables rendered by the dashboard.
//
// Every function here is pure: it reads the records it is given, never
// mutates them, keeps no state and returns a freshly allocated result.
// Empty input always yields an empty, non-nil result.
package analytics

import (
	"time"

	"ecomdash/internal/core"

	"github.com/shopspring/decimal"
)

// FilterRange returns the records approved between start and end, both
// inclusive at day granularity. Records without an approval timestamp are
// never part of a filtered range.
func FilterRange(records []core.OrderRecord, start, end time.Time) []core.OrderRecord {
	from := dayStart(start)
	until := dayStart(end).AddDate(0, 0, 1)
	out := make([]core.OrderRecord, 0, len(records))
	for _, r := range records {
		if !r.ApprovedAt.Valid() {
			continue
		}
		if r.ApprovedAt.Before(from) || !r.ApprovedAt.Before(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DateBounds returns the earliest and latest approval timestamps. ok is
// false when no record has one.
func DateBounds(records []core.OrderRecord) (min, max time.Time, ok bool) {
	for _, r := range records {
		if !r.ApprovedAt.Valid() {
			continue
		}
		if !ok || r.ApprovedAt.Before(min) {
			min = r.ApprovedAt.Time
		}
		if !ok || r.ApprovedAt.After(max) {
			max = r.ApprovedAt.Time
		}
		ok = true
	}
	return min, max, ok
}

// ComputeTotals derives the scalar metrics from the same tables the charts
// use: items from the category popularity table, orders and revenue from
// the daily summary.
func ComputeTotals(records []core.OrderRecord) core.Totals {
	totals := core.Totals{Revenue: decimal.Zero}
	for _, c := range CategoryPopularity(records) {
		totals.Items += c.ProductCount
	}
	for _, d := range DailyOrders(records) {
		totals.Orders += d.OrderCount
		totals.Revenue = totals.Revenue.Add(d.Revenue)
	}
	return totals
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
