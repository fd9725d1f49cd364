package catalog

import "log/slog"

// ColorCategory selects the visual style of a metric card.
type ColorCategory string

const (
	ColorPrimary   ColorCategory = "primary"
	ColorSecondary ColorCategory = "secondary"
	ColorSuccess   ColorCategory = "success"
	ColorWarning   ColorCategory = "warning"
	ColorInfo      ColorCategory = "info"
	ColorAccent    ColorCategory = "accent"
)

// DefaultColor is used for unrecognized tokens.
const DefaultColor = ColorPrimary

// Style is the background, foreground and border triple of a card.
type Style struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Border     string `json:"border"`
}

// LogValue implements slog.LogValuer for structured logging
func (s Style) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bg", s.Background),
		slog.String("fg", s.Foreground),
		slog.String("border", s.Border),
	)
}

// Known reports whether c is one of the defined categories.
func (c ColorCategory) Known() bool {
	switch c {
	case ColorPrimary, ColorSecondary, ColorSuccess, ColorWarning, ColorInfo, ColorAccent:
		return true
	default:
		return false
	}
}

// Resolve returns c, or DefaultColor when c is not a known category.
func (c ColorCategory) Resolve() ColorCategory {
	if c.Known() {
		return c
	}
	return DefaultColor
}

// Style returns the style triple for c. Unknown categories get the
// default style.
func (c ColorCategory) Style() Style {
	switch c {
	case ColorSecondary:
		return Style{Background: "bg-slate-50", Foreground: "text-slate-700", Border: "border-slate-200"}
	case ColorSuccess:
		return Style{Background: "bg-emerald-50", Foreground: "text-emerald-700", Border: "border-emerald-200"}
	case ColorWarning:
		return Style{Background: "bg-amber-50", Foreground: "text-amber-700", Border: "border-amber-200"}
	case ColorInfo:
		return Style{Background: "bg-sky-50", Foreground: "text-sky-700", Border: "border-sky-200"}
	case ColorAccent:
		return Style{Background: "bg-fuchsia-50", Foreground: "text-fuchsia-700", Border: "border-fuchsia-200"}
	case ColorPrimary:
		fallthrough
	default:
		return Style{Background: "bg-indigo-50", Foreground: "text-indigo-700", Border: "border-indigo-200"}
	}
}
