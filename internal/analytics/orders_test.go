package analytics

import (
	"testing"
	"time"

	"ecomdash/internal/core"

	"github.com/shopspring/decimal"
)

func TestDailyOrdersScenario(t *testing.T) {
	records := []core.OrderRecord{
		rec("A", "2018-01-01 08:00:00", "10", "toys", 0),
		rec("A", "2018-01-01 08:00:00", "20", "toys", 0),
		rec("C", "2018-01-02 17:45:00", "5", "books", 0),
	}
	got := DailyOrders(records)
	want := []struct {
		day     time.Time
		orders  int
		revenue string
	}{
		{time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), 1, "30"},
		{time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC), 1, "5"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if !got[i].Day.Equal(w.day) || got[i].OrderCount != w.orders || !got[i].Revenue.Equal(dec(w.revenue)) {
			t.Fatalf("day %d: got %+v want %+v", i, got[i], w)
		}
	}
}

func TestDailyOrdersSortedAndSkipsMissingTimestamps(t *testing.T) {
	records := []core.OrderRecord{
		rec("B", "2018-03-05 10:00:00", "1", "", 0),
		rec("A", "2018-03-01 10:00:00", "1", "", 0),
		rec("X", "", "100", "", 0),
		rec("B", "2018-03-05 23:00:00", "2", "", 0),
	}
	got := DailyOrders(records)
	if len(got) != 2 {
		t.Fatalf("expected two days (no zero-filling), got %+v", got)
	}
	if !got[0].Day.Before(got[1].Day) {
		t.Fatalf("days not ascending: %+v", got)
	}
	if got[1].OrderCount != 1 || !got[1].Revenue.Equal(dec("3")) {
		t.Fatalf("unexpected second day: %+v", got[1])
	}
}

func TestDailyRevenueMatchesInput(t *testing.T) {
	records := []core.OrderRecord{
		rec("A", "2018-01-01 08:00:00", "10.10", "", 0),
		rec("B", "2018-01-01 09:00:00", "0.20", "", 0),
		rec("C", "2018-01-03 10:00:00", "33.33", "", 0),
		rec("C", "2018-01-03 10:00:00", "66.67", "", 0),
		rec("D", "2018-02-28 10:00:00", "0.01", "", 0),
	}
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.PaymentValue)
	}
	daily := decimal.Zero
	for _, d := range DailyOrders(records) {
		daily = daily.Add(d.Revenue)
	}
	if !sum.Equal(daily) {
		t.Fatalf("revenue not conserved: input %s, daily %s", sum, daily)
	}
}

func TestMonthlyTrendCalendarOrder(t *testing.T) {
	records := []core.OrderRecord{
		rec("A", "2018-05-01 10:00:00", "1", "", 0),
		rec("B", "2018-05-02 10:00:00", "1", "", 0),
		rec("B", "2018-05-02 10:00:00", "1", "", 0),
		rec("C", "2018-01-15 10:00:00", "1", "", 0),
		rec("D", "2018-12-31 10:00:00", "1", "", 0),
		rec("E", "", "1", "", 0),
	}
	got := MonthlyTrend(records)
	want := []core.MonthlyOrders{
		{Month: time.January, OrderCount: 1},
		{Month: time.May, OrderCount: 2},
		{Month: time.December, OrderCount: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestMonthlyTrendIgnoresYear(t *testing.T) {
	records := []core.OrderRecord{
		rec("A", "2017-03-01 10:00:00", "1", "", 0),
		rec("B", "2018-03-01 10:00:00", "1", "", 0),
	}
	got := MonthlyTrend(records)
	if len(got) != 1 || got[0].Month != time.March || got[0].OrderCount != 2 {
		t.Fatalf("expected one merged March bucket, got %+v", got)
	}
	if !SpansMultipleYears(records) {
		t.Fatalf("expected multi-year detection")
	}
	if SpansMultipleYears(records[:1]) {
		t.Fatalf("single record cannot span years")
	}
}
