package exporter

import (
	"github.com/neox5/countbox/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// createPrometheusRegistry creates and populates a Prometheus registry.
func createPrometheusRegistry(metrics *metric.Registry) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	promRegistry.MustRegister(
		newCollector(metrics),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return promRegistry
}
