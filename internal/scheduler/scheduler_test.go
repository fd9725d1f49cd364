package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_Every(t *testing.T) {
	t.Run("returns job id and runs the job", func(t *testing.T) {
		s, err := New(nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		var runs atomic.Int32
		id, err := s.Every("test", 10*time.Millisecond, func() { runs.Add(1) })
		require.NoError(t, err)
		require.NotEmpty(t, id)

		s.Start()
		require.Eventually(t, func() bool { return runs.Load() >= 2 },
			2*time.Second, 5*time.Millisecond)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := New(nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.Every("test", 0, func() {})
		require.Error(t, err)
	})
}
