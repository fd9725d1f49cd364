// Package animator counts metrics up from zero to their targets.
//
// A single wheel goroutine owns every metric's sequence and advances all of
// them once per tick, so no sequence is ever mutated concurrently and one
// Stop call cancels everything.
package animator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/format"
)

var (
	// ErrAlreadyStarted is returned when Animate is called twice.
	ErrAlreadyStarted = errors.New("animation already started")

	// ErrStopped is returned when Animate is called after Stop.
	ErrStopped = errors.New("animator stopped")
)

// Animator drives one count-up sequence per catalog metric.
type Animator struct {
	catalog  *catalog.Catalog
	settings Settings
	renderer Renderer
	clock    clockwork.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	sequences []*sequence
	started   bool

	stopped   atomic.Bool
	completed atomic.Bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	doneOnce  sync.Once
	wheel     sync.WaitGroup
}

// Option configures an Animator.
type Option func(*Animator)

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(a *Animator) {
		a.clock = clock
	}
}

// WithLogger sets the logger used for lifecycle and fault messages.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Animator) {
		a.logger = logger
	}
}

// New creates an animator for cat. Nothing runs until Animate.
func New(cat *catalog.Catalog, settings Settings, renderer Renderer, opts ...Option) (*Animator, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer cannot be nil")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a := &Animator{
		catalog:  cat,
		settings: settings,
		renderer: renderer,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Settings returns the validated settings.
func (a *Animator) Settings() Settings {
	return a.settings
}

// Animate starts the sequences for the whole catalog. It may be called
// once; the wheel runs until every sequence is done, Stop is called or ctx
// is cancelled.
func (a *Animator) Animate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return ErrAlreadyStarted
	}
	if a.stopped.Load() {
		return ErrStopped
	}
	a.started = true

	a.sequences = make([]*sequence, a.catalog.Len())
	for i := range a.sequences {
		a.sequences[i] = newSequence(a.catalog.At(i), a.settings.Steps)
	}

	ticker := a.clock.NewTicker(a.settings.Interval())

	a.logger.Debug("animation started",
		"metrics", len(a.sequences),
		"settings", a.settings)

	a.wheel.Add(1)
	go a.run(ctx, ticker)

	return nil
}

// Stop cancels all pending ticks. When Stop returns no further frame is
// rendered. Stop is idempotent and safe before Animate. It must not be
// called from a Renderer.
func (a *Animator) Stop() {
	a.mu.Lock()
	a.stopOnce.Do(func() {
		a.stopped.Store(true)
		close(a.stopCh)
	})
	started := a.started
	a.mu.Unlock()

	a.wheel.Wait()
	if !started {
		a.finish()
	}
}

// Done is closed once every sequence completed or the animator stopped.
func (a *Animator) Done() <-chan struct{} {
	return a.done
}

// Completed reports whether every sequence reached its target.
func (a *Animator) Completed() bool {
	return a.completed.Load()
}

// Started reports whether Animate was called successfully.
func (a *Animator) Started() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// States returns a snapshot of all sequences in catalog order. Before
// Animate it returns nil.
func (a *Animator) States() []State {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sequences == nil {
		return nil
	}
	out := make([]State, len(a.sequences))
	for i, s := range a.sequences {
		out[i] = s.snapshot()
	}
	return out
}

func (a *Animator) run(ctx context.Context, ticker clockwork.Ticker) {
	defer a.wheel.Done()
	defer a.finish()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.stopped.Store(true)
			a.logger.Debug("animation cancelled", "error", ctx.Err())
			return
		case <-a.stopCh:
			a.logger.Debug("animation stopped")
			return
		case <-ticker.Chan():
			if a.stopped.Load() {
				return
			}
			if a.tick() {
				a.completed.Store(true)
				a.logger.Debug("animation complete", "metrics", a.catalog.Len())
				return
			}
		}
	}
}

// tick advances every unfinished sequence by one step and renders the
// result. It reports whether all sequences are done.
func (a *Animator) tick() bool {
	a.mu.Lock()
	frames := make([]Frame, 0, len(a.sequences))
	defs := make([]catalog.MetricDefinition, 0, len(a.sequences))
	remaining := 0
	for _, s := range a.sequences {
		if s.done() {
			continue
		}
		if !s.advance() {
			remaining++
		}
		frames = append(frames, Frame{
			MetricID: s.def.ID,
			Value:    s.current,
			Step:     s.step,
			Steps:    s.steps,
			Done:     s.done(),
		})
		defs = append(defs, s.def)
	}
	a.mu.Unlock()

	for i := range frames {
		if a.stopped.Load() {
			return false
		}
		a.publish(frames[i], defs[i])
	}

	return remaining == 0
}

// publish formats and renders one frame. A panic is confined to this
// metric so sibling metrics keep animating.
func (a *Animator) publish(fr Frame, def catalog.MetricDefinition) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("failed to render metric frame",
				"metric", fr.MetricID,
				"step", fr.Step,
				"panic", r)
		}
	}()

	fr.Display = format.Format(fr.Value, def)
	a.renderer.Render(fr)
}

func (a *Animator) finish() {
	a.doneOnce.Do(func() {
		close(a.done)
	})
}
