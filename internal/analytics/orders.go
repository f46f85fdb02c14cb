package analytics

import (
	"sort"
	"time"

	"ecomdash/internal/core"

	"github.com/shopspring/decimal"
)

// DailyOrders groups records by calendar day of approval. Each day counts
// its distinct orders once and sums the payment of every record, so an
// order with several items contributes one order and several payments.
// Days without records are absent.
func DailyOrders(records []core.OrderRecord) []core.DailyOrders {
	type bucket struct {
		orders  map[string]struct{}
		revenue decimal.Decimal
	}
	buckets := make(map[time.Time]*bucket)
	for _, r := range records {
		if !r.ApprovedAt.Valid() {
			continue
		}
		day := r.ApprovedAt.CalendarDay()
		b, ok := buckets[day]
		if !ok {
			b = &bucket{orders: make(map[string]struct{}), revenue: decimal.Zero}
			buckets[day] = b
		}
		b.orders[r.OrderID] = struct{}{}
		b.revenue = b.revenue.Add(r.PaymentValue)
	}

	out := make([]core.DailyOrders, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, core.DailyOrders{Day: day, OrderCount: len(b.orders), Revenue: b.revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// MonthlyTrend counts distinct orders per calendar month, January first.
// The year is ignored: the same month of two different years shares one
// bucket.
func MonthlyTrend(records []core.OrderRecord) []core.MonthlyOrders {
	buckets := make(map[time.Month]map[string]struct{})
	for _, r := range records {
		if !r.ApprovedAt.Valid() {
			continue
		}
		m := r.ApprovedAt.Month()
		if buckets[m] == nil {
			buckets[m] = make(map[string]struct{})
		}
		buckets[m][r.OrderID] = struct{}{}
	}

	out := make([]core.MonthlyOrders, 0, len(buckets))
	for m := time.January; m <= time.December; m++ {
		if orders, ok := buckets[m]; ok {
			out = append(out, core.MonthlyOrders{Month: m, OrderCount: len(orders)})
		}
	}
	return out
}

// SpansMultipleYears reports whether approved records fall in more than one
// calendar year, the case where MonthlyTrend merges months across years.
func SpansMultipleYears(records []core.OrderRecord) bool {
	min, max, ok := DateBounds(records)
	return ok && min.Year() != max.Year()
}
