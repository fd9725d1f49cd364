package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neox5/countbox/internal/config"
	"github.com/neox5/countbox/internal/metric"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const otelMeterName = "github.com/neox5/countbox"

// OTELExporter pushes metrics to an OTEL collector.
type OTELExporter struct {
	config        *config.OTELExportConfig
	meterProvider *sdkmetric.MeterProvider
	meter         otelmetric.Meter
	instruments   []instrument
}

// NewOTELExporter creates a new OTEL exporter.
func NewOTELExporter(ctx context.Context, cfg *config.OTELExportConfig, metrics *metric.Registry) (*OTELExporter, error) {
	res, err := createOTELResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	meterProvider, err := createMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	return newOTELExporter(cfg, meterProvider, metrics)
}

func newOTELExporter(cfg *config.OTELExportConfig, meterProvider *sdkmetric.MeterProvider, metrics *metric.Registry) (*OTELExporter, error) {
	e := &OTELExporter{
		config:        cfg,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(otelMeterName),
	}

	if err := registerOTELInstruments(e, metrics); err != nil {
		_ = meterProvider.Shutdown(context.Background())
		return nil, err
	}

	return e, nil
}

// Start blocks until ctx is cancelled. The periodic reader pushes in the
// background.
func (e *OTELExporter) Start(ctx context.Context) error {
	slog.Info("starting otel exporter", "otel", e.config)

	<-ctx.Done()
	return e.Stop()
}

// Stop flushes pending metrics and shuts down the provider.
func (e *OTELExporter) Stop() error {
	slog.Info("shutting down otel exporter")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down meter provider: %w", err)
	}
	return nil
}
