package http

import (
	"encoding/json"
	"net/http"
	"time"

	"ecomdash/internal/core"
	"ecomdash/internal/report"
)

// ChartResponse is the envelope of every /api payload. Data holds the rows
// of one summary table.
type ChartResponse struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Records int    `json:"records"`
	Data    any    `json:"data"`
}

type dailyRow struct {
	Day     string  `json:"day"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type categoryRow struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
}

type categoryPanels struct {
	All    []categoryRow `json:"all"`
	Top    []categoryRow `json:"top"`
	Bottom []categoryRow `json:"bottom"`
}

type reviewRow struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type monthlyRow struct {
	Month  int    `json:"month"`
	Name   string `json:"name"`
	Orders int    `json:"orders"`
}

type stateRow struct {
	State     string `json:"state"`
	Customers int    `json:"customers"`
}

type cityRow struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type mapPoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	State string  `json:"state,omitempty"`
	City  string  `json:"city,omitempty"`
}

type totalsPayload struct {
	Items      int     `json:"items"`
	Orders     int     `json:"orders"`
	Revenue    float64 `json:"revenue"`
	RevenueBRL string  `json:"revenue_brl"`
}

// NewChartResponse wraps data with the effective range of sel.
func NewChartResponse(sel report.Selection, data any) ChartResponse {
	resp := ChartResponse{Records: len(sel.Records), Data: data}
	if !sel.Start.IsZero() {
		resp.Start = sel.Start.Format(time.DateOnly)
		resp.End = sel.End.Format(time.DateOnly)
	}
	return resp
}

func dailyRows(in []core.DailyOrders) []dailyRow {
	out := make([]dailyRow, 0, len(in))
	for _, d := range in {
		out = append(out, dailyRow{
			Day:     d.Day.Format(time.DateOnly),
			Orders:  d.OrderCount,
			Revenue: d.Revenue.Round(2).InexactFloat64(),
		})
	}
	return out
}

func categoryRows(in []core.CategoryCount) []categoryRow {
	out := make([]categoryRow, 0, len(in))
	for _, c := range in {
		out = append(out, categoryRow{Category: c.Category, Items: c.ProductCount})
	}
	return out
}

func reviewRows(in []core.ScoreCount) []reviewRow {
	out := make([]reviewRow, 0, len(in))
	for _, r := range in {
		out = append(out, reviewRow{Score: r.Score, Count: r.Count})
	}
	return out
}

func monthlyRows(in []core.MonthlyOrders) []monthlyRow {
	out := make([]monthlyRow, 0, len(in))
	for _, m := range in {
		out = append(out, monthlyRow{Month: int(m.Month), Name: m.Month.String(), Orders: m.OrderCount})
	}
	return out
}

func stateRows(in []core.StateCustomers) []stateRow {
	out := make([]stateRow, 0, len(in))
	for _, s := range in {
		out = append(out, stateRow{State: s.State, Customers: s.CustomerCount})
	}
	return out
}

func cityRows(in []core.CityCount) []cityRow {
	out := make([]cityRow, 0, len(in))
	for _, c := range in {
		out = append(out, cityRow{City: c.City, Count: c.Count})
	}
	return out
}

func mapPoints(in []core.GeoPoint) []mapPoint {
	out := make([]mapPoint, 0, len(in))
	for _, p := range in {
		out = append(out, mapPoint{Lat: p.Lat, Lng: p.Lng, State: p.State, City: p.City})
	}
	return out
}

func totals(t core.Totals) totalsPayload {
	return totalsPayload{
		Items:      t.Items,
		Orders:     t.Orders,
		Revenue:    t.Revenue.Round(2).InexactFloat64(),
		RevenueBRL: core.FormatBRL(t.Revenue),
	}
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged by the caller since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
