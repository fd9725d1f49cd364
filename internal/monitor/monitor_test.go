package monitor

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/neox5/countbox/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct{}

func (fakeStats) Stats() session.Stats {
	return session.Stats{Active: 2, Created: 9}
}

func TestMonitor_CollectLogsResourcesAndSessions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m, err := New(logger, fakeStats{})
	require.NoError(t, err)

	s := m.Collect()
	assert.Positive(t, s.Cores)
	assert.Positive(t, s.Goroutines)
	assert.NotEmpty(t, s.Saturation)

	out := buf.String()
	assert.Contains(t, out, "msg=resource")
	assert.Contains(t, out, "sessions.active=2")
	assert.Contains(t, out, "sessions.created=9")
}

func TestSaturation(t *testing.T) {
	assert.Equal(t, "normal", saturation(0.5))
	assert.Equal(t, "high", saturation(0.9))
	assert.Equal(t, "saturated", saturation(0.99))
}
