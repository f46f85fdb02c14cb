package http

import (
	"bytes"
	"net/http"
	"time"

	"ecomdash/internal/analytics"
	"ecomdash/internal/core"
	applog "ecomdash/internal/log"
	"ecomdash/internal/report"
)

// dashboardPage is the view model of index.html.
type dashboardPage struct {
	Summary report.Summary
	// MinDate and MaxDate bound the date pickers, empty when no approved
	// order exists.
	MinDate string
	MaxDate string
	Start   string
	End     string
}

// summary recomputes every table for the range requested by r. Only the
// page needs all of them at once.
func (s *Server) summary(r *http.Request) report.Summary {
	params := rangeFromRequest(r)
	if s.dataset == nil {
		return report.Summary{}
	}

	began := time.Now()
	sum := report.Build(s.dataset, params.Start, params.End)
	s.dashLog.LogDashboardBuilt(r.Context(), "page", sum.Start, sum.End, sum.Records, time.Since(began))
	return sum
}

// handleIndex renders the dashboard page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	page := dashboardPage{Summary: s.summary(r)}
	if s.dataset != nil {
		if first, last, ok := s.dataset.DateRange(); ok {
			page.MinDate = first.Format(time.DateOnly)
			page.MaxDate = last.Format(time.DateOnly)
		}
	}
	if !page.Summary.Start.IsZero() {
		page.Start = page.Summary.Start.Format(time.DateOnly)
		page.End = page.Summary.End.Format(time.DateOnly)
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.dashLog.LogError(r.Context(), "Index template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// serveChart computes a single table over the range requested by r and
// writes it as a ChartResponse.
func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, chart string, table func([]core.OrderRecord) any) {
	params := rangeFromRequest(r)

	var sel report.Selection
	began := time.Now()
	if s.dataset != nil {
		sel = report.Select(s.dataset, params.Start, params.End)
	}
	data := table(sel.Records)
	if s.dataset != nil {
		s.dashLog.LogDashboardBuilt(r.Context(), chart, sel.Start, sel.End, len(sel.Records), time.Since(began))
	}

	if err := writeJSON(w, http.StatusOK, NewChartResponse(sel, data)); err != nil {
		s.logger.WarnContext(r.Context(), "Chart payload write failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
	}
}

// locations is the geolocation dataset, nil when nothing is loaded.
func (s *Server) locations() []core.GeoPoint {
	if s.dataset == nil {
		return nil
	}
	return s.dataset.Locations()
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "daily", func(records []core.OrderRecord) any {
		return dailyRows(analytics.DailyOrders(records))
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "categories", func(records []core.OrderRecord) any {
		return categoryPanels{
			All:    categoryRows(analytics.CategoryPopularity(records)),
			Top:    categoryRows(analytics.TopCategories(records, report.CategoryPanelSize)),
			Bottom: categoryRows(analytics.BottomCategories(records, report.CategoryPanelSize)),
		}
	})
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "reviews", func(records []core.OrderRecord) any {
		return reviewRows(analytics.ReviewScores(records))
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "monthly", func(records []core.OrderRecord) any {
		return monthlyRows(analytics.MonthlyTrend(records))
	})
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "states", func(records []core.OrderRecord) any {
		return stateRows(analytics.CustomersByState(records))
	})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "cities", func(records []core.OrderRecord) any {
		return cityRows(analytics.TopCities(records, analytics.DefaultTopCities))
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "map", func(records []core.OrderRecord) any {
		return mapPoints(analytics.CustomerLocations(records, s.locations()))
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "totals", func(records []core.OrderRecord) any {
		return totals(analytics.ComputeTotals(records))
	})
}
