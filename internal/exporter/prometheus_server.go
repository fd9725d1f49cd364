package exporter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// createHTTPServer creates an HTTP server for Prometheus metrics.
func createHTTPServer(addr, path string, promRegistry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()

	handler := promhttp.InstrumentMetricHandler(promRegistry, promhttp.HandlerFor(
		promRegistry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))

	mux.Handle(path, loggingMiddleware(handler))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// loggingMiddleware logs scrape requests when debug logging is enabled
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("prometheus scrape", "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
