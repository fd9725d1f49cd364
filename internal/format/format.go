// Package format renders animated metric values for display.
package format

import (
	"math"
	"strconv"

	"github.com/neox5/countbox/internal/catalog"
)

const (
	thousand = 1_000
	million  = 1_000_000
)

// Format renders value for def. It is pure: identical input always yields
// identical output. Values that are not yet defined (NaN, infinite or
// negative) are rendered as zero.
func Format(value float64, def catalog.MetricDefinition) string {
	return def.Prefix + magnitude(sanitize(value), def.Kind) + def.Suffix
}

// Initial renders the display shown before the animation starts.
func Initial(def catalog.MetricDefinition) string {
	return Format(0, def)
}

func magnitude(v float64, kind catalog.Kind) string {
	switch {
	case kind == catalog.KindRatio:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case v >= million:
		return strconv.FormatFloat(v/million, 'f', 1, 64) + "M"
	case v >= thousand:
		return strconv.FormatFloat(math.Round(v/thousand), 'f', 0, 64) + "K"
	default:
		return strconv.FormatFloat(math.Floor(v), 'f', 0, 64)
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
