package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiterRefillsOverTime(t *testing.T) {
	limiter := newIPRateLimiter(2, time.Minute, 2, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })
	ctx := context.Background()

	if !limiter.Allow(ctx, "1.2.3.4") || !limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("expected burst to be allowed")
	}
	if limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("expected third request to be limited")
	}
	if !limiter.Allow(ctx, "5.6.7.8") {
		t.Fatal("expected other keys to be unaffected")
	}

	now = now.Add(30 * time.Second)
	if !limiter.Allow(ctx, "1.2.3.4") {
		t.Fatal("expected a token after half the window")
	}
}

func TestIPRateLimiterExpiresIdleVisitors(t *testing.T) {
	limiter := newIPRateLimiter(1, time.Hour, 1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })

	limiter.Allow(context.Background(), "idle")
	now = now.Add(2 * time.Minute)
	limiter.Allow(context.Background(), "active")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.visitors["idle"]; ok {
		t.Fatal("expected idle visitor to be collected")
	}
}

type denyAll struct{ keys []string }

func (d *denyAll) Allow(_ context.Context, key string) bool {
	d.keys = append(d.keys, key)
	return false
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := &denyAll{}
	called := false
	handler := RateLimit(limiter, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler should not run when limited")
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "login:10.0.0.1" {
		t.Fatalf("unexpected limiter keys %v", limiter.keys)
	}
}

func TestRateLimitNilLimiter(t *testing.T) {
	handler := RateLimit(nil, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:1234"
	if got := ClientIP(req); got != "192.168.1.10" {
		t.Fatalf("expected remote host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.5" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}
