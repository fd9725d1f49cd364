package config

import (
	"fmt"
)

// Validate performs syntactic validation on raw config
func Validate(raw *RawConfig) error {
	return validateRawSyntax(raw)
}

// validateRawSyntax performs basic syntactic validation on raw config
func validateRawSyntax(raw *RawConfig) error {
	// Validate at least one metric defined
	if len(raw.Metrics) == 0 {
		return fmt.Errorf("at least one metric must be defined")
	}

	for i, metric := range raw.Metrics {
		ctx := resolveContext{}.push("metric", fmt.Sprintf("index %d", i))

		if metric.ID == "" {
			return ctx.error("id cannot be empty")
		}
		if !IsValidMetricID(metric.ID) {
			return ctx.error(fmt.Sprintf("invalid id %q (must match %s)", metric.ID, metricIDPattern))
		}
		if metric.Label == "" {
			return ctx.error(fmt.Sprintf("metric %q: label cannot be empty", metric.ID))
		}
		if !metric.Target.Set {
			return ctx.error(fmt.Sprintf("metric %q: target required", metric.ID))
		}
	}

	return nil
}
