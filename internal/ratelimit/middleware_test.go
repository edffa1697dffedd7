package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func (s *stubLimiter) Close() error { return nil }

func serveThrough(limiter Limiter, keyFunc KeyFunc) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Middleware(limiter, keyFunc, func(*http.Request) string { return "req-1" })(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/decisions/execute", nil)
	req.RemoteAddr = "192.0.2.1:55000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_Allowed(t *testing.T) {
	lim := &stubLimiter{allowed: true}
	rec := serveThrough(lim, IPKeyFunc)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected request to pass through, got %d", rec.Code)
	}
	if len(lim.keys) != 1 || lim.keys[0] != "192.0.2.1" {
		t.Fatalf("expected limiter keyed by client IP, got %v", lim.keys)
	}
}

func TestMiddleware_Denied(t *testing.T) {
	rec := serveThrough(&stubLimiter{allowed: false}, IPKeyFunc)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After header, got %q", got)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta struct {
			RequestID string `json:"request_id"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED code, got %q", body.Error.Code)
	}
	if body.Meta.RequestID != "req-1" {
		t.Fatalf("expected request id in envelope, got %q", body.Meta.RequestID)
	}
}

func TestMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	rec := serveThrough(&stubLimiter{allowed: false, err: errors.New("backend down")}, IPKeyFunc)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("limiter errors should fail open, got %d", rec.Code)
	}
}

func TestMiddleware_NilLimiterAndEmptyKeySkip(t *testing.T) {
	if rec := serveThrough(nil, IPKeyFunc); rec.Code != http.StatusNoContent {
		t.Fatalf("nil limiter should pass through, got %d", rec.Code)
	}

	lim := &stubLimiter{allowed: false}
	rec := serveThrough(lim, func(*http.Request) string { return "" })
	if rec.Code != http.StatusNoContent {
		t.Fatalf("empty key should skip limiting, got %d", rec.Code)
	}
	if len(lim.keys) != 0 {
		t.Fatalf("limiter should not be consulted for empty keys, got %v", lim.keys)
	}
}

func TestIPKeyFunc(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:55000", "192.0.2.1"},
		{"[2001:db8::1]:443", "[2001:db8::1]"},
		{"unix-socket", "unix-socket"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := IPKeyFunc(req); got != tt.want {
			t.Errorf("IPKeyFunc(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
