package http

import (
	"net/url"
	"reflect"
	"testing"
	"time"
)

func TestParseRangeParams(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name        string
		query       string
		want        RangeParams
		wantInvalid []string
	}{
		{"empty", "", RangeParams{}, nil},
		{"both bounds", "start=2018-01-01&end=2018-02-15", RangeParams{Start: day(2018, 1, 1), End: day(2018, 2, 15)}, nil},
		{"start only", "start=2017-12-31", RangeParams{Start: day(2017, 12, 31)}, nil},
		{"whitespace", "end=+2018-03-01+", RangeParams{End: day(2018, 3, 1)}, nil},
		{"malformed start", "start=01/02/2018&end=2018-02-15", RangeParams{End: day(2018, 2, 15)}, []string{"start"}},
		{"both malformed", "start=x&end=2018-02-30", RangeParams{}, []string{"start", "end"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got, invalid := ParseRangeParams(q)
			if !got.Start.Equal(tt.want.Start) || !got.End.Equal(tt.want.End) {
				t.Errorf("got %v..%v, want %v..%v", got.Start, got.End, tt.want.Start, tt.want.End)
			}
			if !reflect.DeepEqual(invalid, tt.wantInvalid) {
				t.Errorf("invalid = %v, want %v", invalid, tt.wantInvalid)
			}
		})
	}
}
