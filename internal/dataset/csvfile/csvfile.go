// Package csvfile reads the orders and geolocation datasets from delimited
// text files with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"ecomdash/internal/core"
	"ecomdash/internal/dataset"
)

// Columns required in the combined orders file.
var orderColumns = []string{
	"order_id",
	"order_approved_at",
	"payment_value",
	"product_category_name_english",
	"product_id",
	"customer_id",
	"customer_unique_id",
	"customer_state",
	"customer_city",
	"review_score",
}

// Columns required in the geolocation file.
var geoColumns = []string{
	"customer_unique_id",
	"geolocation_lat",
	"geolocation_lng",
}

// Source reads both datasets from disk.
type Source struct {
	OrdersPath      string
	GeolocationPath string
}

// Ensure interface conformance
var (
	_ dataset.OrderSource = (*Source)(nil)
	_ dataset.GeoSource   = (*Source)(nil)
)

func New(ordersPath, geolocationPath string) *Source {
	return &Source{OrdersPath: ordersPath, GeolocationPath: geolocationPath}
}

// LoadOrders implements dataset.OrderSource.
func (s *Source) LoadOrders(ctx context.Context) ([]core.OrderRecord, error) {
	f, err := os.Open(s.OrdersPath)
	if err != nil {
		return nil, fmt.Errorf("open orders file: %w", err)
	}
	defer f.Close()

	records, err := ReadOrders(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.OrdersPath, err)
	}
	slog.DebugContext(ctx, "Orders file read", "path", s.OrdersPath, "rows", len(records))
	return records, nil
}

// LoadGeolocation implements dataset.GeoSource.
func (s *Source) LoadGeolocation(ctx context.Context) ([]core.GeoPoint, error) {
	f, err := os.Open(s.GeolocationPath)
	if err != nil {
		return nil, fmt.Errorf("open geolocation file: %w", err)
	}
	defer f.Close()

	points, err := ReadGeolocation(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.GeolocationPath, err)
	}
	slog.DebugContext(ctx, "Geolocation file read", "path", s.GeolocationPath, "rows", len(points))
	return points, nil
}

// ReadOrders parses the combined orders dataset. Malformed cells never fail
// the read: bad timestamps become absent, bad payments zero, bad scores
// null.
func ReadOrders(ctx context.Context, r io.Reader) ([]core.OrderRecord, error) {
	cr := newReader(r)
	idx, err := readHeader(cr, orderColumns)
	if err != nil {
		return nil, err
	}

	var out []core.OrderRecord
	badPayments := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line%10000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		rec := core.OrderRecord{
			OrderID:          idx.get(row, "order_id"),
			ProductID:        idx.get(row, "product_id"),
			Category:         nullable(idx.get(row, "product_category_name_english")),
			CustomerID:       idx.get(row, "customer_id"),
			CustomerUniqueID: idx.get(row, "customer_unique_id"),
			CustomerState:    nullable(idx.get(row, "customer_state")),
			CustomerCity:     nullable(idx.get(row, "customer_city")),
			ReviewScore:      parseScore(idx.get(row, "review_score")),
			Lat:              parseOptionalFloat(idx.get(row, "geolocation_lat")),
			Lng:              parseOptionalFloat(idx.get(row, "geolocation_lng")),
		}
		if ts, err := core.ParseTimestamp(idx.get(row, "order_approved_at")); err == nil {
			rec.ApprovedAt = ts
		}
		if v, err := core.ParsePayment(idx.get(row, "payment_value")); err == nil {
			rec.PaymentValue = v
		} else {
			badPayments++
		}
		out = append(out, rec)
	}
	if badPayments > 0 {
		slog.WarnContext(ctx, "Payment values read as zero", "rows", badPayments)
	}
	return out, nil
}

// ReadGeolocation parses the customer geolocation dataset. Rows without
// both coordinates are dropped since they cannot be plotted.
func ReadGeolocation(ctx context.Context, r io.Reader) ([]core.GeoPoint, error) {
	cr := newReader(r)
	idx, err := readHeader(cr, geoColumns)
	if err != nil {
		return nil, err
	}

	var out []core.GeoPoint
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line%10000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lat := parseOptionalFloat(idx.get(row, "geolocation_lat"))
		lng := parseOptionalFloat(idx.get(row, "geolocation_lng"))
		if lat == nil || lng == nil {
			continue
		}
		out = append(out, core.GeoPoint{
			CustomerUniqueID: idx.get(row, "customer_unique_id"),
			Lat:              *lat,
			Lng:              *lng,
			State:            nullable(idx.first(row, "customer_state", "geolocation_state")),
			City:             nullable(idx.first(row, "customer_city", "geolocation_city")),
		})
	}
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

type columnIndex map[string]int

func readHeader(cr *csv.Reader, required []string) (columnIndex, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, dataset.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", dataset.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c columnIndex) first(row []string, names ...string) string {
	for _, n := range names {
		if v := c.get(row, n); v != "" {
			return v
		}
	}
	return ""
}

func nullable(s string) string {
	switch strings.ToLower(s) {
	case "nan", "null", "none":
		return ""
	}
	return s
}

// parseScore accepts "5" as well as the float form "5.0" written by pandas.
func parseScore(s string) int {
	v := parseOptionalFloat(s)
	if v == nil {
		return 0
	}
	score := int(*v)
	if float64(score) != *v || score < 1 || score > 5 {
		return 0
	}
	return score
}

func parseOptionalFloat(s string) *float64 {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
