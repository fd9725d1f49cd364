package animator

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultDuration = 2 * time.Second
	DefaultSteps    = 60
)

// Settings fixes the wall-clock duration and step count shared by every
// metric, regardless of its magnitude.
type Settings struct {
	Duration time.Duration
	Steps    int
}

// DefaultSettings returns the design defaults (2s, 60 steps).
func DefaultSettings() Settings {
	return Settings{Duration: DefaultDuration, Steps: DefaultSteps}
}

// Validate applies defaults and validates settings.
func (s *Settings) Validate() error {
	if s.Duration == 0 {
		s.Duration = DefaultDuration
	}
	if s.Steps == 0 {
		s.Steps = DefaultSteps
	}

	if s.Duration < 0 {
		return fmt.Errorf("animation duration must be positive: %s", s.Duration)
	}
	if s.Steps < 0 {
		return fmt.Errorf("animation steps must be positive: %d", s.Steps)
	}
	if s.Interval() <= 0 {
		return fmt.Errorf("animation duration %s too short for %d steps", s.Duration, s.Steps)
	}
	return nil
}

// Interval returns the time between two ticks.
func (s Settings) Interval() time.Duration {
	if s.Steps <= 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Steps)
}

// LogValue implements slog.LogValuer for structured logging
func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("duration", s.Duration),
		slog.Int("steps", s.Steps),
		slog.Duration("interval", s.Interval()),
	)
}
