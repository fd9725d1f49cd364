package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/neox5/countbox/internal/animator"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/session"
	"github.com/neox5/countbox/internal/trigger"
)

const (
	// Server defaults
	DefaultServerPort              = 8080
	DefaultServerReadHeaderTimeout = 5 * time.Second

	// Session defaults
	DefaultSessionTTL   = session.DefaultTTL
	DefaultSessionSweep = time.Minute
)

// Config holds the complete, resolved application configuration.
type Config struct {
	Server    ServerConfig
	Animation AnimationConfig
	Sessions  SessionsConfig
	Metrics   []catalog.MetricDefinition
	Export    ExportConfig
	Settings  SettingsConfig
}

// Catalog builds the metric catalog from the resolved metrics.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	cat, err := catalog.New(c.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return cat, nil
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
}

// Validate applies defaults and validates server configuration.
func (s *ServerConfig) Validate() error {
	if s.Port == 0 {
		s.Port = DefaultServerPort
	}
	if s.ReadHeaderTimeout == 0 {
		s.ReadHeaderTimeout = DefaultServerReadHeaderTimeout
	}

	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	if s.ReadHeaderTimeout < 0 {
		return fmt.Errorf("server read_header_timeout must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogValue implements slog.LogValuer for structured logging
func (s ServerConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr()),
		slog.Duration("read_header_timeout", s.ReadHeaderTimeout),
	)
}

// AnimationConfig defines count-up timing and the visibility threshold.
type AnimationConfig struct {
	Duration  time.Duration
	Steps     int
	Threshold float64
}

// Validate applies defaults and validates animation configuration.
func (a *AnimationConfig) Validate() error {
	settings := a.Settings()
	if err := settings.Validate(); err != nil {
		return err
	}
	a.Duration = settings.Duration
	a.Steps = settings.Steps

	if a.Threshold < 0 || a.Threshold > 1 {
		return fmt.Errorf("invalid visibility threshold: %v (must be within [0, 1])", a.Threshold)
	}
	return nil
}

// Settings returns the animator settings.
func (a AnimationConfig) Settings() animator.Settings {
	return animator.Settings{Duration: a.Duration, Steps: a.Steps}
}

// LogValue implements slog.LogValuer for structured logging
func (a AnimationConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("duration", a.Duration),
		slog.Int("steps", a.Steps),
		slog.Float64("threshold", a.Threshold),
	)
}

// SessionsConfig defines page session lifetime.
type SessionsConfig struct {
	TTL   time.Duration
	Sweep time.Duration
}

// Validate applies defaults and validates session configuration.
func (s *SessionsConfig) Validate() error {
	if s.TTL == 0 {
		s.TTL = DefaultSessionTTL
	}
	if s.Sweep == 0 {
		s.Sweep = DefaultSessionSweep
	}

	if s.TTL < 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if s.Sweep < 0 {
		return fmt.Errorf("session sweep interval must be positive")
	}
	return nil
}

// defaultThreshold is applied when the raw config omits the threshold.
const defaultThreshold = trigger.DefaultThreshold
