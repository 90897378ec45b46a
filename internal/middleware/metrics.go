package middleware

import (
	"net/http"
	"time"

	"meshwork/internal/observability"
)

// unmatchedRoute labels requests no route pattern matched
const unmatchedRoute = "unmatched"

// Metrics records request counts and latencies per route pattern. The
// pattern is resolved against routes, so Metrics may sit outside middleware
// that rejects a request before it reaches the mux.
func Metrics(collector *observability.Collector, routes *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			_, route := routes.Handler(r)
			if route == "" {
				route = unmatchedRoute
			}

			next.ServeHTTP(rec, r)

			collector.ObserveHTTP(r.Method, route, rec.status, time.Since(start))
		})
	}
}
