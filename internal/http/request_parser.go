package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "ecomdash/internal/log"
)

// RangeParams holds the filter bounds read from the query string. A zero
// bound means "use the dataset bound".
type RangeParams struct {
	Start time.Time
	End   time.Time
}

// ParseRangeParams reads start and end as YYYY-MM-DD. Malformed values are
// dropped and reported in invalid so the caller can log them.
func ParseRangeParams(query url.Values) (params RangeParams, invalid []string) {
	parse := func(key string) time.Time {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			return time.Time{}
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			invalid = append(invalid, key)
			return time.Time{}
		}
		return t
	}

	params.Start = parse("start")
	params.End = parse("end")
	return params, invalid
}

// rangeFromRequest parses the filter bounds and warns about ignored values.
func rangeFromRequest(r *http.Request) RangeParams {
	params, invalid := ParseRangeParams(r.URL.Query())
	if len(invalid) > 0 {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Ignoring malformed date filter",
			"params", invalid,
			applog.FieldQuery, r.URL.RawQuery,
			applog.FieldOperation, applog.OpParse)
	}
	return params
}
