package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefs() []MetricDefinition {
	return []MetricDefinition{
		{ID: "events", Target: 1250, Label: "Events Hosted", Color: ColorPrimary, Suffix: "+"},
		{ID: "tickets", Target: 500000, Label: "Tickets Sold", Color: ColorSuccess, Suffix: "+"},
		{ID: "rating", Target: 4.9, Label: "Average Rating", Color: ColorWarning, Kind: KindRatio, Suffix: "/5"},
	}
}

func TestNew_PreservesOrder(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	assert.Equal(t, "events", c.At(0).ID)
	assert.Equal(t, "tickets", c.At(1).ID)
	assert.Equal(t, "rating", c.At(2).ID)
}

func TestNew_DefaultsKindToCount(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	def, ok := c.Lookup("events")
	require.True(t, ok)
	assert.Equal(t, KindCount, def.Kind)

	def, ok = c.Lookup("rating")
	require.True(t, ok)
	assert.Equal(t, KindRatio, def.Kind)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name string
		defs []MetricDefinition
		want error
	}{
		{"empty catalog", nil, ErrEmptyCatalog},
		{"empty id", []MetricDefinition{{Target: 1}}, ErrEmptyID},
		{"duplicate id", []MetricDefinition{{ID: "a"}, {ID: "a"}}, ErrDuplicateID},
		{"negative target", []MetricDefinition{{ID: "a", Target: -1}}, ErrInvalidTarget},
		{"nan target", []MetricDefinition{{ID: "a", Target: math.NaN()}}, ErrInvalidTarget},
		{"inf target", []MetricDefinition{{ID: "a", Target: math.Inf(1)}}, ErrInvalidTarget},
		{"unknown kind", []MetricDefinition{{ID: "a", Kind: "percent"}}, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_AcceptsZeroTarget(t *testing.T) {
	_, err := New([]MetricDefinition{{ID: "zero", Target: 0}})
	require.NoError(t, err)
}

func TestDefinitions_ReturnsCopy(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	defs := c.Definitions()
	defs[0].Target = 1

	assert.Equal(t, 1250.0, c.At(0).Target)
}

func TestLookup_Missing(t *testing.T) {
	c, err := New(sampleDefs())
	require.NoError(t, err)

	_, ok := c.Lookup("nope")
	assert.False(t, ok)
}

func TestColorCategory_StyleFallsBackToDefault(t *testing.T) {
	assert.Equal(t, ColorPrimary.Style(), ColorCategory("neon").Style())
	assert.Equal(t, ColorPrimary.Style(), ColorCategory("").Style())
	assert.NotEqual(t, ColorPrimary.Style(), ColorSuccess.Style())

	assert.Equal(t, ColorPrimary, ColorCategory("neon").Resolve())
	assert.Equal(t, ColorInfo, ColorInfo.Resolve())
}

func TestColorCategory_EveryKnownCategoryHasStyle(t *testing.T) {
	for _, c := range []ColorCategory{ColorPrimary, ColorSecondary, ColorSuccess, ColorWarning, ColorInfo, ColorAccent} {
		s := c.Style()
		assert.True(t, c.Known(), c)
		assert.NotEmpty(t, s.Background, c)
		assert.NotEmpty(t, s.Foreground, c)
		assert.NotEmpty(t, s.Border, c)
	}
}
