// Package sheets publishes a dashboard report to a Google spreadsheet, one
// tab per summary table.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"ecomdash/internal/core"
	"ecomdash/internal/report"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures the exporter. One of CredentialsJSON or
// CredentialsFile must hold a service account key.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	// TabPrefix is prepended to every tab name, e.g. "2018 " gives "2018 daily".
	TabPrefix string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	tabPrefix     string
}

type table struct {
	name string
	rows [][]any
}

var ErrNotConfigured = errors.New("sheets export not configured")

func New(ctx context.Context, opts Options) (*Exporter, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, fmt.Errorf("%w: missing spreadsheet id", ErrNotConfigured)
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Exporter{svc: svc, spreadsheetID: opts.SpreadsheetID, tabPrefix: opts.TabPrefix}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, fmt.Errorf("%w: missing service account credentials", ErrNotConfigured)
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Export replaces the content of every report tab with the given summary.
// Missing tabs are created first.
func (e *Exporter) Export(ctx context.Context, s report.Summary) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tables := summaryTables(s)

	spreadsheet, err := e.svc.Spreadsheets.Get(e.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", e.spreadsheetID, err)
	}
	existing := make([]string, 0, len(spreadsheet.Sheets))
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil {
			existing = append(existing, sh.Properties.Title)
		}
	}

	if missing := missingTabs(existing, e.tabPrefix, tables); len(missing) > 0 {
		reqs := make([]*gsheet.Request, 0, len(missing))
		for _, title := range missing {
			reqs = append(reqs, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
			})
		}
		_, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID,
			&gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("add tabs %v: %w", missing, err)
		}
		slog.InfoContext(ctx, "Created report tabs", "tabs", missing)
	}

	ranges := make([]string, 0, len(tables))
	for _, t := range tables {
		ranges = append(ranges, quoteRange(e.tabPrefix+t.name, "A:Z"))
	}
	_, err = e.svc.Spreadsheets.Values.BatchClear(e.spreadsheetID,
		&gsheet.BatchClearValuesRequest{Ranges: ranges}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear report tabs: %w", err)
	}

	_, err = e.svc.Spreadsheets.Values.BatchUpdate(e.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             valueRanges(e.tabPrefix, tables),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write report tabs: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"tabs", len(tables),
		"start", s.Start.Format(time.DateOnly),
		"end", s.End.Format(time.DateOnly))
	return nil
}

func summaryTables(s report.Summary) []table {
	daily := [][]any{{"day", "orders", "revenue"}}
	for _, d := range s.Daily {
		daily = append(daily, []any{d.Day.Format(time.DateOnly), d.OrderCount, d.Revenue.StringFixed(2)})
	}

	categories := [][]any{{"category", "items"}}
	for _, c := range s.Categories {
		categories = append(categories, []any{c.Category, c.ProductCount})
	}

	reviews := [][]any{{"score", "count"}}
	for _, r := range s.Reviews {
		reviews = append(reviews, []any{r.Score, r.Count})
	}

	monthly := [][]any{{"month", "orders"}}
	for _, m := range s.Monthly {
		monthly = append(monthly, []any{m.Month.String(), m.OrderCount})
	}

	states := [][]any{{"state", "customers"}}
	for _, st := range s.States {
		states = append(states, []any{st.State, st.CustomerCount})
	}

	cities := [][]any{{"city", "count"}}
	for _, c := range s.Cities {
		cities = append(cities, []any{c.City, c.Count})
	}

	totals := [][]any{
		{"metric", "value"},
		{"start", s.Start.Format(time.DateOnly)},
		{"end", s.End.Format(time.DateOnly)},
		{"items", s.Totals.Items},
		{"orders", s.Totals.Orders},
		{"revenue", s.Totals.Revenue.StringFixed(2)},
		{"revenue_brl", core.FormatBRL(s.Totals.Revenue)},
	}

	return []table{
		{"daily", daily},
		{"categories", categories},
		{"reviews", reviews},
		{"monthly", monthly},
		{"states", states},
		{"cities", cities},
		{"totals", totals},
	}
}

func valueRanges(prefix string, tables []table) []*gsheet.ValueRange {
	out := make([]*gsheet.ValueRange, 0, len(tables))
	for _, t := range tables {
		out = append(out, &gsheet.ValueRange{
			Range:  quoteRange(prefix+t.name, "A1"),
			Values: t.rows,
		})
	}
	return out
}

func missingTabs(existing []string, prefix string, tables []table) []string {
	have := make(map[string]struct{}, len(existing))
	for _, title := range existing {
		have[title] = struct{}{}
	}
	var missing []string
	for _, t := range tables {
		if _, ok := have[prefix+t.name]; !ok {
			missing = append(missing, prefix+t.name)
		}
	}
	return missing
}

// quoteRange builds an A1 range for a tab name that may contain spaces or
// quotes.
func quoteRange(tab, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(tab, "'", "''"), cells)
}
