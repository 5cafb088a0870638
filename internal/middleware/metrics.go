package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/templui/downloadzone/internal/metrics"
)

// Metrics records request counts and latency labelled by route pattern,
// which keeps label cardinality bounded by the number of routes.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r, info := withRouteInfo(r)
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		route := info.route()
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
