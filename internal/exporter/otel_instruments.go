package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/neox5/countbox/internal/metric"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// instrument holds an OTEL observable instrument and its value reader.
type instrument struct {
	counter    otelmetric.Float64ObservableCounter
	gauge      otelmetric.Float64ObservableGauge
	value      func() float64
	attributes []attribute.KeyValue
}

// registerOTELInstruments creates and registers instruments for all metrics.
func registerOTELInstruments(e *OTELExporter, metrics *metric.Registry) error {
	var instruments []instrument

	for _, m := range metrics.Metrics() {
		attrs := make([]attribute.KeyValue, 0, len(m.Attributes))
		for key, val := range m.Attributes {
			attrs = append(attrs, attribute.String(key, val))
		}

		inst := instrument{
			value:      m.Value,
			attributes: attrs,
		}

		switch m.Type {
		case metric.MetricTypeCounter:
			counter, err := e.meter.Float64ObservableCounter(
				m.OTELName,
				otelmetric.WithDescription(m.Description),
			)
			if err != nil {
				return fmt.Errorf("failed to create counter %q: %w", m.OTELName, err)
			}
			inst.counter = counter

		default:
			gauge, err := e.meter.Float64ObservableGauge(
				m.OTELName,
				otelmetric.WithDescription(m.Description),
			)
			if err != nil {
				return fmt.Errorf("failed to create gauge %q: %w", m.OTELName, err)
			}
			inst.gauge = gauge
		}

		instruments = append(instruments, inst)

		// Extract and sort attribute key=value pairs for logging
		attrPairs := make([]string, len(attrs))
		for i, attr := range attrs {
			attrPairs[i] = fmt.Sprintf("%s=%s", attr.Key, attr.Value.AsString())
		}
		sort.Strings(attrPairs)

		slog.Debug("registered otel metric",
			"name", m.OTELName,
			"type", m.Type,
			"attributes", fmt.Sprintf("%v", attrPairs))
	}

	e.instruments = instruments

	return registerOTELCallback(e)
}

// registerOTELCallback registers the observation callback for all instruments.
func registerOTELCallback(e *OTELExporter) error {
	var observables []otelmetric.Observable
	for _, inst := range e.instruments {
		if inst.counter != nil {
			observables = append(observables, inst.counter)
		}
		if inst.gauge != nil {
			observables = append(observables, inst.gauge)
		}
	}

	_, err := e.meter.RegisterCallback(
		func(ctx context.Context, observer otelmetric.Observer) error {
			slog.Debug("otel collect", "metrics", len(e.instruments))

			for _, inst := range e.instruments {
				val := inst.value()
				if inst.counter != nil {
					observer.ObserveFloat64(inst.counter, val,
						otelmetric.WithAttributes(inst.attributes...))
				}
				if inst.gauge != nil {
					observer.ObserveFloat64(inst.gauge, val,
						otelmetric.WithAttributes(inst.attributes...))
				}
			}
			return nil
		},
		observables...,
	)
	if err != nil {
		return fmt.Errorf("failed to register callback: %w", err)
	}

	return nil
}
