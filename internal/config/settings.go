package config

import (
	"fmt"
	"log/slog"
	"time"
)

const DefaultMonitorInterval = 30 * time.Second

// SettingsConfig holds general application settings.
type SettingsConfig struct {
	Log     LogConfig
	Monitor MonitorConfig
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  LogLevel
	Format LogFormat
}

// LogLevel is a textual slog level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Level converts l to a slog.Level.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// MonitorConfig controls the resource monitor.
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Validate applies defaults and validates settings configuration.
func (s *SettingsConfig) Validate() error {
	if s.Log.Level == "" {
		s.Log.Level = LogLevelInfo
	}
	if s.Log.Format == "" {
		s.Log.Format = LogFormatText
	}

	switch s.Log.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s.Log.Level)
	}

	switch s.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", s.Log.Format)
	}

	if s.Monitor.Interval == 0 {
		s.Monitor.Interval = DefaultMonitorInterval
	}
	if s.Monitor.Interval < 0 {
		return fmt.Errorf("monitor interval must be positive")
	}

	return nil
}
