package config

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/neox5/countbox/internal/catalog"
)

// Resolve converts raw config into the final config, applying defaults
func Resolve(raw *RawConfig) (*Config, error) {
	server := ServerConfig{
		Host:              raw.Server.Host,
		Port:              raw.Server.Port,
		ReadHeaderTimeout: raw.Server.ReadHeaderTimeout,
	}
	if err := server.Validate(); err != nil {
		return nil, resolveContext{}.push("section", "server").wrap(err)
	}

	animation := AnimationConfig{
		Duration:  raw.Animation.Duration,
		Steps:     raw.Animation.Steps,
		Threshold: defaultThreshold,
	}
	if raw.Animation.Threshold != nil {
		animation.Threshold = *raw.Animation.Threshold
	}
	if err := animation.Validate(); err != nil {
		return nil, resolveContext{}.push("section", "animation").wrap(err)
	}

	sessions := SessionsConfig{
		TTL:   raw.Sessions.TTL,
		Sweep: raw.Sessions.Sweep,
	}
	if err := sessions.Validate(); err != nil {
		return nil, resolveContext{}.push("section", "sessions").wrap(err)
	}

	metrics, err := resolveMetrics(raw.Metrics)
	if err != nil {
		return nil, err
	}

	export, err := resolveExport(&raw.Export)
	if err != nil {
		return nil, resolveContext{}.push("section", "export").wrap(err)
	}

	settings, err := resolveSettings(&raw.Settings)
	if err != nil {
		return nil, resolveContext{}.push("section", "settings").wrap(err)
	}

	return &Config{
		Server:    server,
		Animation: animation,
		Sessions:  sessions,
		Metrics:   metrics,
		Export:    export,
		Settings:  settings,
	}, nil
}

// resolveMetrics converts raw metrics into catalog definitions and checks
// that they form a valid catalog
func resolveMetrics(raw []RawMetricConfig) ([]catalog.MetricDefinition, error) {
	defs := make([]catalog.MetricDefinition, 0, len(raw))

	for i, m := range raw {
		ctx := resolveContext{}.push("metric", fmt.Sprintf("index %d", i))

		kind := catalog.Kind(strings.ToLower(m.Kind))
		switch kind {
		case "", catalog.KindCount, catalog.KindRatio:
		default:
			return nil, ctx.error(fmt.Sprintf("metric %q: unknown kind %q (must be count or ratio)", m.ID, m.Kind))
		}

		// Unknown colors are kept and fall back to the default style.
		color := catalog.ColorCategory(strings.ToLower(m.Color))

		defs = append(defs, catalog.MetricDefinition{
			ID:          m.ID,
			Target:      m.Target.Value,
			Label:       m.Label,
			Description: m.Description,
			Color:       color,
			Kind:        kind,
			Prefix:      m.Prefix,
			Suffix:      m.Suffix,
			Icon:        m.Icon,
		})
	}

	// Catalog construction applies the remaining invariants
	cat, err := catalog.New(defs)
	if err != nil {
		return nil, resolveContext{}.push("section", "metrics").wrap(err)
	}

	return cat.Definitions(), nil
}

// resolveExport converts raw export config to resolved export config
func resolveExport(raw *RawExportConfig) (ExportConfig, error) {
	result := ExportConfig{}

	if raw.Prometheus != nil {
		result.Prometheus = &PrometheusExportConfig{
			Enabled: raw.Prometheus.Enabled,
			Port:    raw.Prometheus.Port,
			Path:    raw.Prometheus.Path,
		}
	}

	if raw.OTEL != nil {
		result.OTEL = &OTELExportConfig{
			Enabled:   raw.OTEL.Enabled,
			Transport: raw.OTEL.Transport,
			Host:      raw.OTEL.Host,
			Port:      raw.OTEL.Port,
			Interval: IntervalConfig{
				Read: raw.OTEL.Interval.Read,
				Push: raw.OTEL.Interval.Push,
			},
			Resource: copyStringMap(raw.OTEL.Resource),
			Headers:  copyStringMap(raw.OTEL.Headers),
		}
	}

	if raw.NATS != nil {
		result.NATS = &NATSExportConfig{
			Enabled: raw.NATS.Enabled,
			URL:     raw.NATS.URL,
			Subject: raw.NATS.Subject,
		}
	}

	if err := result.Validate(); err != nil {
		return ExportConfig{}, err
	}

	return result, nil
}

// resolveSettings converts raw settings config to resolved settings config
func resolveSettings(raw *RawSettingsConfig) (SettingsConfig, error) {
	result := SettingsConfig{
		Log: LogConfig{
			Level:  LogLevel(strings.ToLower(raw.Log.Level)),
			Format: LogFormat(strings.ToLower(raw.Log.Format)),
		},
		Monitor: MonitorConfig{
			Enabled:  raw.Monitor.Enabled == nil || *raw.Monitor.Enabled,
			Interval: raw.Monitor.Interval,
		},
	}

	if err := result.Validate(); err != nil {
		return SettingsConfig{}, err
	}

	return result, nil
}

// copyStringMap creates a copy of a string map (handles nil)
func copyStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	maps.Copy(dst, src)
	return dst
}

// resolveContext tracks resolution path for error messages
type resolveContext []string

func (ctx resolveContext) push(component, name string) resolveContext {
	return append(ctx, fmt.Sprintf("%s %q", component, name))
}

func (ctx resolveContext) error(msg string) error {
	return ctx.wrap(errors.New(msg))
}

// wrap appends the resolution path to err, keeping it matchable with
// errors.Is
func (ctx resolveContext) wrap(err error) error {
	if len(ctx) == 0 {
		return err
	}

	var b strings.Builder
	// Print stack top-down (innermost first)
	for i := len(ctx) - 1; i >= 0; i-- {
		b.WriteString("\n  in ")
		b.WriteString(ctx[i])
	}
	return fmt.Errorf("%w%s", err, b.String())
}
