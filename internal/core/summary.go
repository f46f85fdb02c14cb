package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyOrders is one row of the daily orders summary.
type DailyOrders struct {
	Day        time.Time
	OrderCount int
	Revenue    decimal.Decimal
}

// CategoryCount is the number of order items sold in one product category.
type CategoryCount struct {
	Category     string
	ProductCount int
}

// ScoreCount is how many records carry a given review score.
type ScoreCount struct {
	Score int
	Count int
}

// MonthlyOrders is the distinct order count for one calendar month.
type MonthlyOrders struct {
	Month      time.Month
	OrderCount int
}

// StateCustomers is the distinct customer count for one state.
type StateCustomers struct {
	State         string
	CustomerCount int
}

// CityCount is the raw record count for one city.
type CityCount struct {
	City  string
	Count int
}

// Totals holds the scalar metrics shown above the charts.
type Totals struct {
	Items   int
	Orders  int
	Revenue decimal.Decimal
}
