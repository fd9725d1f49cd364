package exporter

import (
	"log/slog"
	"sort"

	"github.com/neox5/countbox/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// metricDescriptor holds metadata for a Prometheus metric.
type metricDescriptor struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func() float64
}

// collector implements prometheus.Collector and reads live values on scrape.
type collector struct {
	descriptors []metricDescriptor
}

// newCollector creates a collector from metric registry.
func newCollector(metrics *metric.Registry) *collector {
	var descriptors []metricDescriptor

	for _, m := range metrics.Metrics() {
		valueType := prometheus.GaugeValue
		if m.Type == metric.MetricTypeCounter {
			valueType = prometheus.CounterValue
		}

		// Attributes become const labels so descriptors sharing a name
		// differ by label value
		labelNames := make([]string, 0, len(m.Attributes))
		for key := range m.Attributes {
			labelNames = append(labelNames, key)
		}
		sort.Strings(labelNames)

		descriptors = append(descriptors, metricDescriptor{
			desc: prometheus.NewDesc(
				m.PrometheusName,
				m.Description,
				nil,
				prometheus.Labels(m.Attributes),
			),
			valueType: valueType,
			value:     m.Value,
		})

		slog.Debug("registered prometheus metric",
			"name", m.PrometheusName,
			"type", m.Type,
			"labels", labelNames)
	}

	return &collector{descriptors: descriptors}
}

// Describe sends metric descriptors to the channel.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.descriptors {
		ch <- m.desc
	}
}

// Collect sends current values to the channel. Called on each scrape.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.descriptors {
		metric, err := prometheus.NewConstMetric(
			m.desc,
			m.valueType,
			m.value(),
		)
		if err != nil {
			continue
		}

		ch <- metric
	}
}
