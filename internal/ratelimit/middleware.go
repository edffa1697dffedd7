package ratelimit

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/vantage-intel/vantage/internal/model"
)

// KeyFunc extracts the rate-limit key from a request. An empty key skips
// limiting for that request.
type KeyFunc func(r *http.Request) string

// RequestIDFunc extracts the request ID for the 429 envelope. Injected by
// the caller so this package does not import the server package.
type RequestIDFunc func(r *http.Request) string

// Middleware enforces limiter on every request keyed by keyFunc.
// A nil limiter disables enforcement entirely, and limiter errors fail
// open: a broken limiter must degrade to unlimited traffic, not an outage.
func Middleware(limiter Limiter, keyFunc KeyFunc, reqIDFunc RequestIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err == nil && !allowed {
				var requestID string
				if reqIDFunc != nil {
					requestID = reqIDFunc(r)
				}
				deny(w, requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// deny writes the 429 response in the standard API error envelope.
func deny(w http.ResponseWriter, requestID string) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.APIError{
		Error: model.ErrorDetail{
			Code:    model.ErrCodeRateLimited,
			Message: "too many requests",
		},
		Meta: model.ResponseMeta{
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	})
}

// IPKeyFunc keys requests by client IP taken from RemoteAddr.
// X-Forwarded-For is deliberately ignored: the server is not guaranteed to
// sit behind a sanitizing proxy, and a spoofable header would let any
// client dodge its bucket.
func IPKeyFunc(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
