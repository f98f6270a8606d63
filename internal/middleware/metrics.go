package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vidtube/backend/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched route
// pattern. It must wrap the ServeMux directly so the pattern is visible.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapped.Status()), time.Since(start).Seconds())
	})
}
