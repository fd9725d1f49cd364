package animator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *recorder) Render(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) byMetric(id string) []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Frame
	for _, f := range r.frames {
		if f.MetricID == id {
			out = append(out, f)
		}
	}
	return out
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.MetricDefinition{
		{ID: "events", Target: 1250, Suffix: "+"},
		{ID: "tickets", Target: 500_000, Suffix: "+"},
		{ID: "rating", Target: 4.9, Kind: catalog.KindRatio},
		{ID: "refunds", Target: 0},
		{ID: "odd", Target: 0.1 + 0.2},
	})
	require.NoError(t, err)
	return cat
}

// advanceSteps moves the fake clock one interval at a time and waits until
// every metric rendered that step.
func advanceSteps(t *testing.T, clk *clockwork.FakeClock, rec *recorder, interval time.Duration, metrics, from, to int) {
	t.Helper()
	for step := from + 1; step <= to; step++ {
		clk.Advance(interval)
		want := step * metrics
		require.Eventually(t, func() bool { return rec.count() >= want },
			time.Second, time.Millisecond, "step %d not rendered", step)
	}
}

func TestSequence_TerminalValueIsExact(t *testing.T) {
	for _, target := range []float64{0, 0.3, 4.9, 1250, 500_000, 1e9 + 0.7, 0.1 + 0.2} {
		s := newSequence(catalog.MetricDefinition{ID: "m", Target: target}, DefaultSteps)

		prev := 0.0
		for k := 1; k <= DefaultSteps; k++ {
			done := s.advance()
			assert.Equal(t, k == DefaultSteps, done)
			assert.GreaterOrEqual(t, s.current, prev, "target %v step %d", target, k)
			assert.LessOrEqual(t, s.current, target, "target %v step %d", target, k)
			prev = s.current
		}

		assert.Equal(t, target, s.current)
		assert.Equal(t, DefaultSteps, s.step)

		// Extra advances are no-ops.
		assert.True(t, s.advance())
		assert.Equal(t, DefaultSteps, s.step)
		assert.Equal(t, target, s.current)
	}
}

func TestAnimator_RunsToCompletion(t *testing.T) {
	cat := testCatalog(t)
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	settings := Settings{Duration: 600 * time.Millisecond, Steps: 6}

	a, err := New(cat, settings, rec, WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, a.Animate(context.Background()))

	advanceSteps(t, clk, rec, settings.Interval(), cat.Len(), 0, settings.Steps)

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("animator did not finish")
	}
	assert.True(t, a.Completed())

	for _, def := range cat.Definitions() {
		frames := rec.byMetric(def.ID)
		require.Len(t, frames, settings.Steps, def.ID)

		last := frames[len(frames)-1]
		assert.Equal(t, def.Target, last.Value, def.ID)
		assert.True(t, last.Done, def.ID)

		for i := 1; i < len(frames); i++ {
			assert.GreaterOrEqual(t, frames[i].Value, frames[i-1].Value, def.ID)
			assert.Equal(t, i+1, frames[i].Step)
		}
	}

	assert.Equal(t, "1K+", rec.byMetric("events")[settings.Steps-1].Display)
	assert.Equal(t, "500K+", rec.byMetric("tickets")[settings.Steps-1].Display)
	assert.Equal(t, "4.9", rec.byMetric("rating")[settings.Steps-1].Display)

	for _, st := range a.States() {
		assert.True(t, st.Done(), st.MetricID)
	}

	// No frames after completion.
	clk.Advance(10 * settings.Interval())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, cat.Len()*settings.Steps, rec.count())
}

func TestAnimator_ZeroTargetCompletes(t *testing.T) {
	cat, err := catalog.New([]catalog.MetricDefinition{{ID: "zero", Target: 0, Suffix: "+"}})
	require.NoError(t, err)

	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	settings := Settings{Duration: 40 * time.Millisecond, Steps: 4}

	a, err := New(cat, settings, rec, WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, a.Animate(context.Background()))

	advanceSteps(t, clk, rec, settings.Interval(), 1, 0, settings.Steps)
	<-a.Done()

	frames := rec.byMetric("zero")
	require.Len(t, frames, 4)
	for _, f := range frames {
		assert.Zero(t, f.Value)
		assert.Equal(t, "0+", f.Display)
	}
	assert.True(t, frames[3].Done)
	assert.True(t, a.Completed())
}

func TestAnimator_StopHaltsTicks(t *testing.T) {
	cat := testCatalog(t)
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	settings := Settings{Duration: time.Second, Steps: 10}

	a, err := New(cat, settings, rec, WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, a.Animate(context.Background()))

	advanceSteps(t, clk, rec, settings.Interval(), cat.Len(), 0, 3)

	a.Stop()
	seen := rec.count()

	for range 10 {
		clk.Advance(settings.Interval())
	}
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, seen, rec.count())
	assert.False(t, a.Completed())

	select {
	case <-a.Done():
	default:
		t.Fatal("done channel not closed after stop")
	}

	// Stop is idempotent.
	a.Stop()
}

func TestAnimator_ContextCancelStops(t *testing.T) {
	cat := testCatalog(t)
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	settings := Settings{Duration: time.Second, Steps: 10}

	a, err := New(cat, settings, rec, WithClock(clk))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Animate(ctx))
	cancel()

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("animator did not stop on cancel")
	}
	assert.False(t, a.Completed())
}

func TestAnimator_AnimateOnce(t *testing.T) {
	a, err := New(testCatalog(t), Settings{}, &recorder{}, WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)
	t.Cleanup(a.Stop)

	require.NoError(t, a.Animate(context.Background()))
	require.ErrorIs(t, a.Animate(context.Background()), ErrAlreadyStarted)
	assert.True(t, a.Started())
}

func TestAnimator_StopBeforeAnimate(t *testing.T) {
	a, err := New(testCatalog(t), Settings{}, &recorder{}, WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	a.Stop()
	require.ErrorIs(t, a.Animate(context.Background()), ErrStopped)
	assert.Nil(t, a.States())

	select {
	case <-a.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestAnimator_RenderPanicIsolatedPerMetric(t *testing.T) {
	cat := testCatalog(t)
	clk := clockwork.NewFakeClock()
	rec := &recorder{}
	settings := Settings{Duration: 30 * time.Millisecond, Steps: 3}

	faulty := RendererFunc(func(f Frame) {
		if f.MetricID == "tickets" {
			panic("boom")
		}
		rec.Render(f)
	})

	a, err := New(cat, settings, faulty, WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, a.Animate(context.Background()))

	others := cat.Len() - 1
	advanceSteps(t, clk, rec, settings.Interval(), others, 0, settings.Steps)
	<-a.Done()

	assert.Empty(t, rec.byMetric("tickets"))
	assert.Len(t, rec.byMetric("events"), settings.Steps)
	assert.Len(t, rec.byMetric("rating"), settings.Steps)
	assert.True(t, a.Completed())
}

func TestAnimator_RealClock(t *testing.T) {
	cat := testCatalog(t)
	rec := &recorder{}

	a, err := New(cat, Settings{Duration: 50 * time.Millisecond, Steps: 5}, rec)
	require.NoError(t, err)
	require.NoError(t, a.Animate(context.Background()))

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("animation did not complete")
	}
	assert.True(t, a.Completed())
	assert.Equal(t, cat.Len()*5, rec.count())
}

func TestNew_Validation(t *testing.T) {
	cat := testCatalog(t)

	_, err := New(nil, Settings{}, &recorder{})
	require.Error(t, err)

	_, err = New(cat, Settings{}, nil)
	require.Error(t, err)

	_, err = New(cat, Settings{Duration: -time.Second}, &recorder{})
	require.Error(t, err)

	_, err = New(cat, Settings{Duration: time.Nanosecond, Steps: 60}, &recorder{})
	require.Error(t, err)

	a, err := New(cat, Settings{}, &recorder{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), a.Settings())
}

func TestRenderers_FanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Renderers{a, b}.Render(Frame{MetricID: "x"})

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}
