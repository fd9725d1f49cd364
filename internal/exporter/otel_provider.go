package exporter

import (
	"context"
	"fmt"

	"github.com/neox5/countbox/internal/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// createMeterProvider creates an OTEL meter provider with an OTLP exporter
// for the configured transport.
func createMeterProvider(
	ctx context.Context,
	cfg *config.OTELExportConfig,
	res *resource.Resource,
) (*sdkmetric.MeterProvider, error) {
	exporter, err := createOTLPExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(cfg.Interval.Push),
	)

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}

func createOTLPExporter(ctx context.Context, cfg *config.OTELExportConfig) (sdkmetric.Exporter, error) {
	switch cfg.Transport {
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.GetEndpoint()),
			otlpmetrichttp.WithInsecure(), // TODO: Add TLS support later
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}

		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		return exporter, nil

	default:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.GetEndpoint()),
			otlpmetricgrpc.WithInsecure(), // TODO: Add TLS support later
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exporter, nil
	}
}
