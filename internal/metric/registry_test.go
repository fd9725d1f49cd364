package metric

import (
	"testing"

	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct{ s session.Stats }

func (f *fakeStats) Stats() session.Stats { return f.s }

type fakeCatalogs struct {
	cat     *catalog.Catalog
	version uint64
}

func (f *fakeCatalogs) Catalog() *catalog.Catalog { return f.cat }
func (f *fakeCatalogs) Version() uint64           { return f.version }

func TestNew_ReadsLiveValues(t *testing.T) {
	cat, err := catalog.New([]catalog.MetricDefinition{{ID: "a", Target: 1}, {ID: "b", Target: 2}})
	require.NoError(t, err)

	stats := &fakeStats{}
	reg, err := New(stats, &fakeCatalogs{cat: cat, version: 3})
	require.NoError(t, err)

	byName := map[string]Descriptor{}
	for _, m := range reg.Metrics() {
		key := m.PrometheusName
		if reason, ok := m.Attributes["reason"]; ok {
			key += "/" + reason
		}
		byName[key] = m
	}
	require.Len(t, byName, 9)

	stats.s = session.Stats{
		Active: 2, Created: 5, Triggered: 4, Completed: 3,
		Expired: 1, Removed: 6, Shutdown: 8,
	}

	assert.InDelta(t, 2, byName["countbox_sessions_active"].Value(), 0)
	assert.InDelta(t, 5, byName["countbox_sessions_created_total"].Value(), 0)
	assert.InDelta(t, 4, byName["countbox_sessions_triggered_total"].Value(), 0)
	assert.InDelta(t, 3, byName["countbox_sessions_completed_total"].Value(), 0)
	assert.InDelta(t, 1, byName["countbox_sessions_evicted_total/expired"].Value(), 0)
	assert.InDelta(t, 6, byName["countbox_sessions_evicted_total/removed"].Value(), 0)
	assert.InDelta(t, 8, byName["countbox_sessions_evicted_total/shutdown"].Value(), 0)
	assert.InDelta(t, 3, byName["countbox_catalog_version"].Value(), 0)
	assert.InDelta(t, 2, byName["countbox_catalog_metrics"].Value(), 0)

	assert.Equal(t, MetricTypeCounter, byName["countbox_sessions_created_total"].Type)
	assert.Equal(t, "countbox.sessions.created", byName["countbox_sessions_created_total"].OTELName)
	assert.Equal(t, MetricTypeGauge, byName["countbox_sessions_active"].Type)
	assert.Equal(t, "countbox.sessions.evicted", byName["countbox_sessions_evicted_total/removed"].OTELName)
}

func TestNew_WithoutCatalog(t *testing.T) {
	reg, err := New(&fakeStats{}, nil)
	require.NoError(t, err)
	assert.Len(t, reg.Metrics(), 7)

	_, err = New(nil, nil)
	require.Error(t, err)
}
