package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted in the order dataset, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

type (
	// Timestamp is an optional point in time. The zero value means the
	// source field was absent or could not be parsed.
	Timestamp struct {
		time.Time
	}

	// OrderRecord is one row of the joined order/item/payment/customer/
	// product/review dataset. Several records can share an OrderID.
	OrderRecord struct {
		OrderID          string
		ProductID        string
		ApprovedAt       Timestamp
		PaymentValue     decimal.Decimal
		Category         string // product_category_name_english, "" when null
		CustomerID       string
		CustomerUniqueID string
		CustomerState    string
		CustomerCity     string
		ReviewScore      int // 0 when null
		Lat              *float64
		Lng              *float64
	}

	// GeoPoint is one row of the customer geolocation dataset.
	GeoPoint struct {
		CustomerUniqueID string
		Lat              float64
		Lng              float64
		State            string
		City             string
	}
)

var (
	ErrEmptyTimestamp   = errors.New("empty timestamp")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ParseTimestamp parses a dataset timestamp. The wall clock written in the
// field is kept and stored as UTC, so a zone offset never moves a record to
// another calendar day or month.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return Timestamp{}, ErrEmptyTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: wallClockUTC(t)}, nil
		}
	}
	return Timestamp{}, ErrInvalidTimestamp
}

func wallClockUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// NewTimestamp builds a UTC timestamp, mostly useful in tests.
func NewTimestamp(year int, month time.Month, day, hour, min, sec int) Timestamp {
	return Timestamp{Time: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

// Valid reports whether the timestamp was present and parseable.
func (t Timestamp) Valid() bool {
	return !t.IsZero()
}

// CalendarDay truncates the timestamp to midnight UTC of its day.
func (t Timestamp) CalendarDay() time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HasReviewScore reports whether the record carries a score in 1..5.
func (r OrderRecord) HasReviewScore() bool {
	return r.ReviewScore >= 1 && r.ReviewScore <= 5
}
