package middleware

import (
	"net/http"
	"time"

	"github.com/tecmax-dev/sisvida-sub017/internal/metrics"
)

// Prometheus records duration and count for every request except the scrape itself.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)
		metrics.RecordRequest(r.Method, r.URL.Path, sw.status, time.Since(start).Seconds())
	})
}
