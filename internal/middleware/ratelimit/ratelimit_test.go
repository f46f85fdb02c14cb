package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, limit int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: limit, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	now := time.Date(2018, time.January, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("clients are limited independently")
	}

	*now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("a new window should reset the count")
	}

	m := rl.GetMetrics()
	if m.Rejected != 1 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 3)
	rl.Allow("10.0.0.1")
	*now = now.Add(30 * time.Second)
	rl.Allow("10.0.0.2")
	*now = now.Add(45 * time.Second)

	rl.cleanupStaleEntries()
	if got := rl.GetMetrics().ClientCount; got != 1 {
		t.Fatalf("expected only the recent client to remain, got %d", got)
	}
}

func TestMiddleware(t *testing.T) {
	rl, now := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "10.0.0.1" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	*now = now.Add(15 * time.Second)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "45" {
		t.Fatalf("Retry-After = %q, want 45", got)
	}
}

func TestNewLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()
	if rl.requestsPerMinute != DefaultConfig().RequestsPerMinute {
		t.Fatalf("requestsPerMinute = %d", rl.requestsPerMinute)
	}
	rl.Stop()
}
