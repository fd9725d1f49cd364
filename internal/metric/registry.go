package metric

import (
	"fmt"

	"github.com/neox5/countbox/internal/session"
)

// StatsSource reports session registry counters.
type StatsSource interface {
	Stats() session.Stats
}

// CatalogSource reports the catalog currently served to new sessions.
type CatalogSource interface {
	session.CatalogSource
	Version() uint64
}

// Registry holds protocol-agnostic metric definitions.
type Registry struct {
	metrics []Descriptor
}

// New creates the service metric registry. catalogs may be nil.
func New(stats StatsSource, catalogs CatalogSource) (*Registry, error) {
	if stats == nil {
		return nil, fmt.Errorf("stats source cannot be nil")
	}

	metrics := []Descriptor{
		{
			PrometheusName: "countbox_sessions_active",
			OTELName:       "countbox.sessions.active",
			Type:           MetricTypeGauge,
			Description:    "Number of mounted page sessions",
			Value:          func() float64 { return float64(stats.Stats().Active) },
		},
		sessionCounter(stats, "created", "Total page sessions mounted",
			func(s session.Stats) uint64 { return s.Created }),
		sessionCounter(stats, "triggered", "Total sessions whose visibility trigger fired",
			func(s session.Stats) uint64 { return s.Triggered }),
		sessionCounter(stats, "completed", "Total sessions whose animation reached every target",
			func(s session.Stats) uint64 { return s.Completed }),
	}
	for _, reason := range session.EvictReasons {
		metrics = append(metrics, evictedCounter(stats, reason))
	}

	if catalogs != nil {
		metrics = append(metrics,
			Descriptor{
				PrometheusName: "countbox_catalog_version",
				OTELName:       "countbox.catalog.version",
				Type:           MetricTypeGauge,
				Description:    "Catalog generation, incremented on every reload",
				Value:          func() float64 { return float64(catalogs.Version()) },
			},
			Descriptor{
				PrometheusName: "countbox_catalog_metrics",
				OTELName:       "countbox.catalog.metrics",
				Type:           MetricTypeGauge,
				Description:    "Number of statistics in the current catalog",
				Value:          func() float64 { return float64(catalogs.Catalog().Len()) },
			},
		)
	}

	return &Registry{metrics: metrics}, nil
}

// Metrics returns all registered metric descriptors.
func (r *Registry) Metrics() []Descriptor {
	return r.metrics
}

func sessionCounter(stats StatsSource, name, help string, field func(session.Stats) uint64) Descriptor {
	return Descriptor{
		PrometheusName: "countbox_sessions_" + name + "_total",
		OTELName:       "countbox.sessions." + name,
		Type:           MetricTypeCounter,
		Description:    help,
		Value:          func() float64 { return float64(field(stats.Stats())) },
	}
}

// evictedCounter reports unmounted sessions labelled by reason. All
// reasons share one metric name.
func evictedCounter(stats StatsSource, reason session.EvictReason) Descriptor {
	return Descriptor{
		PrometheusName: "countbox_sessions_evicted_total",
		OTELName:       "countbox.sessions.evicted",
		Type:           MetricTypeCounter,
		Description:    "Total sessions unmounted, by reason",
		Attributes:     map[string]string{"reason": string(reason)},
		Value:          func() float64 { return float64(stats.Stats().Evictions(reason)) },
	}
}
