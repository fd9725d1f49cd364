package config

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// RawMetricConfig defines one statistic of the catalog
type RawMetricConfig struct {
	ID          string    `yaml:"id"`
	Label       string    `yaml:"label"`
	Description string    `yaml:"description,omitempty"`
	Target      RawTarget `yaml:"target"`
	Kind        string    `yaml:"kind,omitempty"`
	Color       string    `yaml:"color,omitempty"`
	Prefix      string    `yaml:"prefix,omitempty"`
	Suffix      string    `yaml:"suffix,omitempty"`
	Icon        string    `yaml:"icon,omitempty"`
}

// UnmarshalYAML handles the "title" alias for label.
func (m *RawMetricConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawMetricConfig RawMetricConfig // Avoid recursion
	var rm rawMetricConfig
	if err := value.Decode(&rm); err != nil {
		return err
	}
	*m = RawMetricConfig(rm)

	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	_, hasLabel := raw["label"]
	title, hasTitle := raw["title"]
	if hasLabel && hasTitle {
		return fmt.Errorf("cannot specify both 'label' and 'title'")
	}
	if s, ok := title.(string); ok {
		m.Label = s
	}

	return nil
}

// RawTarget is a metric target written as a number or as a string with
// digit separators ("500_000", "1,250").
type RawTarget struct {
	Value float64
	Set   bool
}

// UnmarshalYAML handles both numeric and string forms.
func (t *RawTarget) UnmarshalYAML(value *yaml.Node) error {
	// Try numeric form first
	var n float64
	if err := value.Decode(&n); err == nil {
		t.Value = n
		t.Set = true
		return nil
	}

	// Fall back to string form
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	clean := strings.NewReplacer("_", "", ",", "", " ", "").Replace(s)
	n, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return fmt.Errorf("invalid target %q: %w", s, err)
	}
	t.Value = n
	t.Set = true
	return nil
}
