package config

import "time"

// RawConfig represents unparsed YAML structure
type RawConfig struct {
	Server    RawServerConfig    `yaml:"server"`
	Animation RawAnimationConfig `yaml:"animation"`
	Sessions  RawSessionsConfig  `yaml:"sessions"`
	Metrics   []RawMetricConfig  `yaml:"metrics"`
	Export    RawExportConfig    `yaml:"export"`
	Settings  RawSettingsConfig  `yaml:"settings"`
}

// RawServerConfig defines the HTTP listener
type RawServerConfig struct {
	Host              string        `yaml:"host,omitempty"`
	Port              int           `yaml:"port,omitempty"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout,omitempty"`
}

// RawAnimationConfig defines count-up timing and the visibility threshold.
// Threshold is a pointer so an explicit 0 is distinguishable from unset.
type RawAnimationConfig struct {
	Duration  time.Duration `yaml:"duration,omitempty"`
	Steps     int           `yaml:"steps,omitempty"`
	Threshold *float64      `yaml:"threshold,omitempty"`
}

// RawSessionsConfig defines page session lifetime
type RawSessionsConfig struct {
	TTL   time.Duration `yaml:"ttl,omitempty"`
	Sweep time.Duration `yaml:"sweep,omitempty"`
}
