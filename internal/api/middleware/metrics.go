package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector feeds the request and error counters exposed by the
// /metrics endpoint. The counters live on the App so the handler can read
// them without a dependency on this package.
type MetricsCollector struct {
	requests *atomic.Int64
	errors   *atomic.Int64
}

func NewMetricsCollector(requests, errors *atomic.Int64) *MetricsCollector {
	return &MetricsCollector{requests: requests, errors: errors}
}

// Middleware counts every request and any response with a 4xx or 5xx status.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errors.Add(1)
		}
	})
}
