// Package report assembles every dashboard table for one date range.
package report

import (
	"time"

	"ecomdash/internal/analytics"
	"ecomdash/internal/core"
	"ecomdash/internal/dataset"
)

// CategoryPanelSize is the length of the best and worst seller panels.
const CategoryPanelSize = 5

// Summary is the full set of derived tables for one filter range. It is
// rebuilt on every request and never stored.
type Summary struct {
	Start time.Time
	End   time.Time

	Records          int
	Daily            []core.DailyOrders
	Categories       []core.CategoryCount
	TopCategories    []core.CategoryCount
	BottomCategories []core.CategoryCount
	Reviews          []core.ScoreCount
	Monthly          []core.MonthlyOrders
	States           []core.StateCustomers
	Cities           []core.CityCount
	Locations        []core.GeoPoint
	Totals           core.Totals
}

// Empty reports whether no record fell in the range.
func (s Summary) Empty() bool {
	return s.Records == 0
}

// Clamp resolves a requested range against the dataset range. Zero bounds
// default to the dataset bounds, out-of-range bounds are pulled back inside
// it and reversed bounds are swapped. ok is false when the dataset has no
// approved order at all.
func Clamp(ds *dataset.Dataset, start, end time.Time) (from, to time.Time, ok bool) {
	min, max, ok := ds.DateRange()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	min, max = day(min), day(max)

	from = within(start, min, max, min)
	to = within(end, min, max, max)
	if from.After(to) {
		from, to = to, from
	}
	return from, to, true
}

// Selection is the approved records of one clamped range. Start and End
// are zero when the dataset has no approved order.
type Selection struct {
	Start   time.Time
	End     time.Time
	Records []core.OrderRecord
}

// Select clamps the requested range and filters the dataset to it. A
// single chart only needs its own aggregator run over the result.
func Select(ds *dataset.Dataset, start, end time.Time) Selection {
	from, to, ok := Clamp(ds, start, end)
	if !ok {
		return Selection{}
	}
	return Selection{
		Start:   from,
		End:     to,
		Records: analytics.FilterRange(ds.Orders(), from, to),
	}
}

// Build filters the dataset to the clamped range and runs every aggregator
// on the result.
func Build(ds *dataset.Dataset, start, end time.Time) Summary {
	sel := Select(ds, start, end)
	records := sel.Records

	return Summary{
		Start:            sel.Start,
		End:              sel.End,
		Records:          len(records),
		Daily:            analytics.DailyOrders(records),
		Categories:       analytics.CategoryPopularity(records),
		TopCategories:    analytics.TopCategories(records, CategoryPanelSize),
		BottomCategories: analytics.BottomCategories(records, CategoryPanelSize),
		Reviews:          analytics.ReviewScores(records),
		Monthly:          analytics.MonthlyTrend(records),
		States:           analytics.CustomersByState(records),
		Cities:           analytics.TopCities(records, analytics.DefaultTopCities),
		Locations:        analytics.CustomerLocations(records, ds.Locations()),
		Totals:           analytics.ComputeTotals(records),
	}
}

func within(t, min, max, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	t = day(t)
	if t.Before(min) {
		return min
	}
	if t.After(max) {
		return max
	}
	return t
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
