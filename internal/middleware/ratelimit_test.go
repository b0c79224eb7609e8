package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestLimiter returns a limiter driven by a fake clock.
func newTestLimiter(t *testing.T, max int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(max, window)
	t.Cleanup(rl.Stop)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func allow(rl Limiter, key string) bool {
	ok, _, _ := rl.Allow(context.Background(), key)
	return ok
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !allow(rl, "192.168.1.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if allow(rl, "192.168.1.1") {
		t.Error("4th request should be denied")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)

	allow(rl, "192.168.1.1")
	if allow(rl, "192.168.1.1") {
		t.Error("first IP should be limited")
	}
	if !allow(rl, "192.168.1.2") {
		t.Error("second IP should have its own budget")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	allow(rl, "10.0.0.1")
	*clock = clock.Add(20 * time.Second)

	ok, wait, err := rl.Allow(context.Background(), "10.0.0.1")
	if err != nil || ok {
		t.Fatalf("expected denial, got ok=%v err=%v", ok, err)
	}
	if wait != 40*time.Second {
		t.Errorf("retryAfter = %v, want 40s", wait)
	}

	*clock = clock.Add(40 * time.Second)

	if !allow(rl, "10.0.0.1") {
		t.Error("request after the window should be allowed")
	}
}

func TestRateLimiter_EvictExpired(t *testing.T) {
	rl, clock := newTestLimiter(t, 5, time.Minute)

	allow(rl, "10.0.0.1")
	*clock = clock.Add(2 * time.Minute)
	rl.evictExpired()

	if len(rl.entries) != 0 {
		t.Errorf("expected expired entries to be evicted, have %d", len(rl.entries))
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	limited := 0
	mw := NewRateLimitMiddleware(rl, slog.New(slog.DiscardHandler), func() { limited++ }, false)

	calls := 0
	handler := mw.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 1 {
			if rec.Code != http.StatusTooManyRequests {
				t.Errorf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			if !strings.Contains(rec.Body.String(), "<h1>Too Many Requests</h1>") {
				t.Errorf("expected full page, got %q", rec.Body.String())
			}
		}
	}

	if calls != 1 {
		t.Errorf("expected next handler to run once, ran %d times", calls)
	}
	if limited != 1 {
		t.Errorf("expected onLimit once, got %d", limited)
	}
}

func TestRateLimitMiddleware_HTMXFragmentKeepsForm(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	mw := NewRateLimitMiddleware(rl, slog.New(slog.DiscardHandler), nil, true)
	handler := mw.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Retarget"); got != "#signup-flash" {
		t.Errorf("HX-Retarget = %q", got)
	}
	if got := rec.Header().Get("HX-Reswap"); got != "innerHTML" {
		t.Errorf("HX-Reswap = %q", got)
	}
	if strings.Contains(rec.Body.String(), "<html>") {
		t.Error("htmx response should be a fragment")
	}
	if !strings.Contains(rec.Body.String(), `role="alert"`) {
		t.Errorf("expected alert fragment, got %q", rec.Body.String())
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis: connection refused")
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	mw := NewRateLimitMiddleware(failingLimiter{}, slog.New(slog.DiscardHandler), nil, false)
	called := false
	handler := mw.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", nil))

	if !called {
		t.Error("request should pass when the limiter fails")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware_IgnoresForwardedHeadersByDefault(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Minute)
	mw := NewRateLimitMiddleware(rl, slog.New(slog.DiscardHandler), nil, false)
	handler := mw.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 2)
	for _, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		req.RemoteAddr = "192.0.2.9:4000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("rotating X-Forwarded-For must not reset the budget, got %v", codes)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:80", true, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:80", true, "198.51.100.4"},
		{"forwarded for untrusted", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "10.0.0.2:80", false, "10.0.0.2"},
		{"real ip untrusted", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:80", false, "10.0.0.2"},
		{"remote addr", nil, "192.0.2.1:5555", true, "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", false, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
