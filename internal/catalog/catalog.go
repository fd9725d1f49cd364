package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

var (
	ErrEmptyID       = errors.New("metric id cannot be empty")
	ErrDuplicateID   = errors.New("duplicate metric id")
	ErrInvalidTarget = errors.New("metric target must be a finite, non-negative number")
	ErrUnknownKind   = errors.New("unknown metric kind")
	ErrEmptyCatalog  = errors.New("catalog must contain at least one metric")
)

// Kind selects how a metric value is formatted.
type Kind string

const (
	// KindCount is a plain quantity, abbreviated by magnitude (K, M).
	KindCount Kind = "count"

	// KindRatio is a score or rating rendered with one decimal digit.
	KindRatio Kind = "ratio"
)

// MetricDefinition describes one statistic shown on the page.
type MetricDefinition struct {
	ID          string
	Target      float64
	Label       string
	Description string
	Color       ColorCategory
	Kind        Kind
	Prefix      string
	Suffix      string
	Icon        string
}

// Style returns the resolved style triple of the definition.
func (d MetricDefinition) Style() Style {
	return d.Color.Style()
}

// LogValue implements slog.LogValuer for structured logging
func (d MetricDefinition) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", d.ID),
		slog.Float64("target", d.Target),
		slog.String("kind", string(d.Kind)),
		slog.String("color", string(d.Color.Resolve())),
	)
}

// Catalog is an ordered, read-only list of metric definitions.
type Catalog struct {
	defs  []MetricDefinition
	index map[string]int
}

// New validates defs and builds a catalog preserving their order.
func New(defs []MetricDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		defs:  make([]MetricDefinition, len(defs)),
		index: make(map[string]int, len(defs)),
	}

	for i, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("metric at index %d: %w", i, ErrEmptyID)
		}
		if _, exists := c.index[def.ID]; exists {
			return nil, fmt.Errorf("metric %q: %w", def.ID, ErrDuplicateID)
		}
		if math.IsNaN(def.Target) || math.IsInf(def.Target, 0) || def.Target < 0 {
			return nil, fmt.Errorf("metric %q: %w", def.ID, ErrInvalidTarget)
		}

		switch def.Kind {
		case "":
			def.Kind = KindCount
		case KindCount, KindRatio:
		default:
			return nil, fmt.Errorf("metric %q: %w: %s", def.ID, ErrUnknownKind, def.Kind)
		}

		c.defs[i] = def
		c.index[def.ID] = i
	}

	return c, nil
}

// Len returns the number of metrics.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// At returns the definition at display position i.
func (c *Catalog) At(i int) MetricDefinition {
	return c.defs[i]
}

// Definitions returns a copy of all definitions in display order.
func (c *Catalog) Definitions() []MetricDefinition {
	out := make([]MetricDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition with the given id.
func (c *Catalog) Lookup(id string) (MetricDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return MetricDefinition{}, false
	}
	return c.defs[i], true
}
