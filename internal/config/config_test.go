package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neox5/countbox/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
metrics:
  - id: events
    label: Events hosted
    target: 1250
    suffix: "+"
`

func TestLoadBytes_Defaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerReadHeaderTimeout, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 2*time.Second, cfg.Animation.Duration)
	assert.Equal(t, 60, cfg.Animation.Steps)
	assert.InDelta(t, 0.3, cfg.Animation.Threshold, 1e-9)
	assert.Equal(t, DefaultSessionTTL, cfg.Sessions.TTL)
	assert.Equal(t, DefaultSessionSweep, cfg.Sessions.Sweep)

	require.True(t, cfg.Export.PrometheusEnabled())
	assert.Equal(t, DefaultPrometheusPort, cfg.Export.Prometheus.Port)
	assert.Equal(t, DefaultPrometheusPath, cfg.Export.Prometheus.Path)
	assert.False(t, cfg.Export.OTELEnabled())
	assert.False(t, cfg.Export.NATSEnabled())

	assert.Equal(t, LogLevelInfo, cfg.Settings.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Settings.Log.Format)
	assert.True(t, cfg.Settings.Monitor.Enabled)
	assert.Equal(t, DefaultMonitorInterval, cfg.Settings.Monitor.Interval)

	require.Len(t, cfg.Metrics, 1)
	m := cfg.Metrics[0]
	assert.Equal(t, "events", m.ID)
	assert.Equal(t, "Events hosted", m.Label)
	assert.InDelta(t, 1250, m.Target, 0)
	assert.Equal(t, catalog.KindCount, m.Kind)
	assert.Equal(t, "+", m.Suffix)
}

func TestLoadBytes_FullConfig(t *testing.T) {
	data := `
server:
  host: 127.0.0.1
  port: 9000
animation:
  duration: 1500ms
  steps: 30
  threshold: 0.5
sessions:
  ttl: 5m
  sweep: 30s
metrics:
  - id: tickets
    title: Tickets sold
    target: "500_000"
    color: Success
  - id: rating
    label: Average rating
    target: 4.9
    kind: RATIO
export:
  prometheus:
    enabled: false
  otel:
    enabled: true
    transport: http
    interval: 5s
  nats:
    enabled: true
settings:
  log:
    level: debug
    format: json
  monitor:
    enabled: false
`
	cfg, err := LoadBytes([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 1500*time.Millisecond, cfg.Animation.Duration)
	assert.Equal(t, 30, cfg.Animation.Steps)
	assert.InDelta(t, 0.5, cfg.Animation.Threshold, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, 30*time.Second, cfg.Sessions.Sweep)

	require.Len(t, cfg.Metrics, 2)
	assert.Equal(t, "Tickets sold", cfg.Metrics[0].Label)
	assert.InDelta(t, 500000, cfg.Metrics[0].Target, 0)
	assert.Equal(t, catalog.ColorSuccess, cfg.Metrics[0].Color)
	assert.Equal(t, catalog.KindRatio, cfg.Metrics[1].Kind)

	assert.False(t, cfg.Export.PrometheusEnabled())
	require.True(t, cfg.Export.OTELEnabled())
	assert.Equal(t, "http", cfg.Export.OTEL.Transport)
	assert.Equal(t, DefaultOTELPortHTTP, cfg.Export.OTEL.Port)
	assert.Equal(t, 5*time.Second, cfg.Export.OTEL.Interval.Read)
	assert.Equal(t, 5*time.Second, cfg.Export.OTEL.Interval.Push)
	assert.Equal(t, DefaultServiceName, cfg.Export.OTEL.Resource["service.name"])
	require.True(t, cfg.Export.NATSEnabled())
	assert.Equal(t, DefaultNATSURL, cfg.Export.NATS.URL)
	assert.Equal(t, DefaultNATSSubject, cfg.Export.NATS.Subject)

	assert.Equal(t, LogLevelDebug, cfg.Settings.Log.Level)
	assert.Equal(t, LogFormatJSON, cfg.Settings.Log.Format)
	assert.False(t, cfg.Settings.Monitor.Enabled)
}

func TestLoadBytes_ExplicitZeroThreshold(t *testing.T) {
	cfg, err := LoadBytes([]byte(minimalConfig + "animation:\n  threshold: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Animation.Threshold)
}

func TestLoadBytes_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no metrics", "server:\n  port: 8080\n"},
		{"missing id", "metrics:\n  - label: x\n    target: 1\n"},
		{"invalid id", "metrics:\n  - id: Bad ID\n    label: x\n    target: 1\n"},
		{"missing label", "metrics:\n  - id: a\n    target: 1\n"},
		{"missing target", "metrics:\n  - id: a\n    label: x\n"},
		{"label and title", "metrics:\n  - id: a\n    label: x\n    title: y\n    target: 1\n"},
		{"bad target string", "metrics:\n  - id: a\n    label: x\n    target: lots\n"},
		{"negative target", "metrics:\n  - id: a\n    label: x\n    target: -5\n"},
		{"unknown kind", "metrics:\n  - id: a\n    label: x\n    target: 1\n    kind: percent\n"},
		{"threshold above one", minimalConfig + "animation:\n  threshold: 1.5\n"},
		{"negative steps", minimalConfig + "animation:\n  steps: -1\n"},
		{"bad server port", minimalConfig + "server:\n  port: 70000\n"},
		{"bad log level", minimalConfig + "settings:\n  log:\n    level: loud\n"},
		{"bad otel transport", minimalConfig + "export:\n  otel:\n    enabled: true\n    transport: udp\n"},
		{"bad prometheus path", minimalConfig + "export:\n  prometheus:\n    enabled: true\n    path: metrics\n"},
		{"wildcard nats subject", minimalConfig + "export:\n  nats:\n    enabled: true\n    subject: frames.>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestLoadBytes_DuplicateIDKeepsSentinel(t *testing.T) {
	data := `
metrics:
  - id: a
    label: A
    target: 1
  - id: a
    label: B
    target: 2
`
	_, err := LoadBytes([]byte(data))
	require.ErrorIs(t, err, catalog.ErrDuplicateID)
	assert.Contains(t, err.Error(), `in section "metrics"`)
}

func TestLoadBytes_MetricErrorsNameIndex(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"validation", "metrics:\n  - id: a\n    label: x\n    target: 1\n  - id: b\n    target: 1\n", `metric "b": label cannot be empty`},
		{"resolution", "metrics:\n  - id: a\n    label: x\n    target: 1\n  - id: b\n    label: y\n    target: 1\n    kind: percent\n", `metric "b": unknown kind "percent"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), `in metric "index 1"`)
		})
	}
}

func TestRawTarget_StringForms(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`"500_000"`, 500000},
		{`"1,250"`, 1250},
		{`"2 460 000"`, 2460000},
		{`"4.9"`, 4.9},
		{`12`, 12},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			data := "metrics:\n  - id: a\n    label: x\n    target: " + tt.in + "\n"
			cfg, err := LoadBytes([]byte(data))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, cfg.Metrics[0].Target, 1e-9)
		})
	}
}

func TestConfig_Catalog(t *testing.T) {
	cfg, err := LoadBytes([]byte(minimalConfig))
	require.NoError(t, err)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	def, ok := cat.Lookup("events")
	require.True(t, ok)
	assert.Equal(t, "Events hosted", def.Label)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Metrics, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLogLevel_Level(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.Level().String())
	assert.Equal(t, "INFO", LogLevelInfo.Level().String())
	assert.Equal(t, "WARN", LogLevelWarn.Level().String())
	assert.Equal(t, "ERROR", LogLevelError.Level().String())
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}
