package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// Prometheus defaults
	DefaultPrometheusPort = 9090
	DefaultPrometheusPath = "/metrics"

	// OTEL defaults
	DefaultOTELReadInterval = 10 * time.Second
	DefaultOTELPushInterval = 10 * time.Second
	DefaultOTELTransport    = "grpc"
	DefaultOTELHost         = "localhost"
	DefaultOTELPortGRPC     = 4317
	DefaultOTELPortHTTP     = 4318
	DefaultServiceName      = "countbox"
	DefaultServiceVersion   = "dev"

	// NATS defaults
	DefaultNATSURL     = "nats://127.0.0.1:4222"
	DefaultNATSSubject = "countbox.frames"
)

// ExportConfig defines where service metrics and frames are sent.
type ExportConfig struct {
	Prometheus *PrometheusExportConfig
	OTEL       *OTELExportConfig
	NATS       *NATSExportConfig
}

// Validate applies defaults and validates export configuration.
func (e *ExportConfig) Validate() error {
	// Default to Prometheus enabled if no metric exporter configured
	if e.Prometheus == nil && e.OTEL == nil {
		e.Prometheus = &PrometheusExportConfig{
			Enabled: true,
			Port:    DefaultPrometheusPort,
			Path:    DefaultPrometheusPath,
		}
	}

	if e.Prometheus != nil && e.Prometheus.Enabled {
		if err := e.Prometheus.Validate(); err != nil {
			return err
		}
	}

	if e.OTEL != nil && e.OTEL.Enabled {
		if err := e.OTEL.Validate(); err != nil {
			return err
		}
	}

	if e.NATS != nil && e.NATS.Enabled {
		if err := e.NATS.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// PrometheusEnabled reports whether the scrape endpoint is enabled.
func (e ExportConfig) PrometheusEnabled() bool {
	return e.Prometheus != nil && e.Prometheus.Enabled
}

// OTELEnabled reports whether OTEL push is enabled.
func (e ExportConfig) OTELEnabled() bool {
	return e.OTEL != nil && e.OTEL.Enabled
}

// NATSEnabled reports whether frames are published to NATS.
func (e ExportConfig) NATSEnabled() bool {
	return e.NATS != nil && e.NATS.Enabled
}

// PrometheusExportConfig defines Prometheus pull endpoint settings.
type PrometheusExportConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// Validate applies defaults and validates Prometheus configuration.
func (c *PrometheusExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Port == 0 {
		c.Port = DefaultPrometheusPort
	}
	if c.Path == "" {
		c.Path = DefaultPrometheusPath
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid prometheus port: %d", c.Port)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("prometheus path must start with '/': %s", c.Path)
	}

	return nil
}

// OTELExportConfig defines OTEL push settings.
type OTELExportConfig struct {
	Enabled   bool
	Transport string
	Host      string
	Port      int
	Interval  IntervalConfig
	Resource  map[string]string
	Headers   map[string]string
}

// IntervalConfig defines read and push intervals for OTEL.
type IntervalConfig struct {
	Read time.Duration
	Push time.Duration
}

// Validate applies defaults and validates OTEL configuration.
func (c *OTELExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Transport == "" {
		c.Transport = DefaultOTELTransport
	}
	if c.Transport != "grpc" && c.Transport != "http" {
		return fmt.Errorf("invalid transport: %s (must be grpc or http)", c.Transport)
	}

	if c.Host == "" {
		c.Host = DefaultOTELHost
	}
	if c.Port == 0 {
		if c.Transport == "grpc" {
			c.Port = DefaultOTELPortGRPC
		} else {
			c.Port = DefaultOTELPortHTTP
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid otel port: %d", c.Port)
	}

	if c.Interval.Read == 0 {
		c.Interval.Read = DefaultOTELReadInterval
	}
	if c.Interval.Push == 0 {
		c.Interval.Push = DefaultOTELPushInterval
	}

	if c.Resource == nil {
		c.Resource = make(map[string]string)
	}
	if _, exists := c.Resource["service.name"]; !exists {
		c.Resource["service.name"] = DefaultServiceName
	}
	if _, exists := c.Resource["service.version"]; !exists {
		c.Resource["service.version"] = DefaultServiceVersion
	}

	return nil
}

// GetEndpoint returns the full endpoint address.
func (c *OTELExportConfig) GetEndpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LogValue implements slog.LogValuer for structured logging
func (c OTELExportConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("transport", c.Transport),
		slog.String("endpoint", c.GetEndpoint()),
		slog.Duration("push", c.Interval.Push),
	)
}

// NATSExportConfig defines the NATS frame sink.
type NATSExportConfig struct {
	Enabled bool
	URL     string
	Subject string
}

// Validate applies defaults and validates NATS configuration.
func (c *NATSExportConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.URL == "" {
		c.URL = DefaultNATSURL
	}
	if c.Subject == "" {
		c.Subject = DefaultNATSSubject
	}

	if strings.ContainsAny(c.Subject, " \t*>") {
		return fmt.Errorf("invalid nats subject %q: wildcards and whitespace not allowed", c.Subject)
	}
	return nil
}
