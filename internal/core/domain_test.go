package core

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2018-01-01 10:20:30", time.Date(2018, 1, 1, 10, 20, 30, 0, time.UTC), true},
		{"2018-01-01T10:20:30", time.Date(2018, 1, 1, 10, 20, 30, 0, time.UTC), true},
		{"2018-01-01T10:20:30Z", time.Date(2018, 1, 1, 10, 20, 30, 0, time.UTC), true},
		{"2018-01-01T23:30:00-03:00", time.Date(2018, 1, 1, 23, 30, 0, 0, time.UTC), true},
		{"2018-02-01T00:15:00+02:00", time.Date(2018, 2, 1, 0, 15, 0, 0, time.UTC), true},
		{"2018-03-04", time.Date(2018, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{" 2018-03-04 08:00 ", time.Date(2018, 3, 4, 8, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"NaT", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"2018-13-01 00:00:00", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got.Time, err)
			}
			if !got.Valid() {
				t.Fatalf("%q expected valid timestamp", tc.in)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if got.Valid() {
			t.Fatalf("%q expected zero timestamp on error", tc.in)
		}
	}
}

func TestTimestampCalendarDay(t *testing.T) {
	ts := NewTimestamp(2018, 1, 2, 23, 59, 59)
	want := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := ts.CalendarDay(); !got.Equal(want) {
		t.Fatalf("calendar day: got %v want %v", got, want)
	}
}

func TestZonedTimestampKeepsCalendarDay(t *testing.T) {
	ts, err := ParseTimestamp("2018-01-31T23:30:00-03:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2018, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := ts.CalendarDay(); !got.Equal(want) {
		t.Fatalf("calendar day: got %v want %v", got, want)
	}
	if ts.Month() != time.January {
		t.Fatalf("month: got %v want January", ts.Month())
	}
}

func TestOrderRecordHelpers(t *testing.T) {
	r := OrderRecord{ReviewScore: 5}
	if !r.HasReviewScore() {
		t.Fatalf("expected a score: %+v", r)
	}
	for _, score := range []int{0, 6, -1} {
		if (OrderRecord{ReviewScore: score}).HasReviewScore() {
			t.Fatalf("score %d should not count", score)
		}
	}
}
