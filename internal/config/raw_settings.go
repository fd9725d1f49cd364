package config

import "time"

// RawSettingsConfig holds general application settings
type RawSettingsConfig struct {
	Log     RawLogConfig     `yaml:"log"`
	Monitor RawMonitorConfig `yaml:"monitor"`
}

// RawLogConfig controls the slog handler
type RawLogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// RawMonitorConfig controls the resource monitor
type RawMonitorConfig struct {
	Enabled  *bool         `yaml:"enabled,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}
