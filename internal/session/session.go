// Package session models one mounted statistics section: its visibility
// trigger, its counter animation and the frames it publishes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/neox5/countbox/internal/animator"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/trigger"
)

// ErrClosed is returned by operations on an unmounted session.
var ErrClosed = errors.New("session closed")

// Status is the externally visible lifecycle state of a session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnimating Status = "animating"
	StatusComplete  Status = "complete"
	StatusClosed    Status = "closed"
)

// Sink builds a frame renderer bound to one session.
type Sink interface {
	Renderer(sessionID string) animator.Renderer
}

// Options configures new sessions.
type Options struct {
	Settings  animator.Settings
	Threshold float64
	Sinks     []Sink
	Clock     clockwork.Clock
	Logger    *slog.Logger

	// OnTrigger runs after the animation was started.
	OnTrigger func(*Session)

	// OnComplete runs once every metric reached its target.
	OnComplete func(*Session)
}

// Session owns the visibility flag and the animation of one page instance.
// It is created on mount and destroyed by Close.
type Session struct {
	id        string
	catalog   *catalog.Catalog
	createdAt time.Time
	logger    *slog.Logger

	trigger  *trigger.Trigger
	animator *animator.Animator
	hub      *hub

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    chan struct{}

	onTrigger  func(*Session)
	onComplete func(*Session)
}

// New mounts a session for cat.
func New(id string, cat *catalog.Catalog, opts Options) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	settings := opts.Settings
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid animation settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         id,
		catalog:    cat,
		createdAt:  clock.Now(),
		logger:     logger,
		hub:        newHub(cat, settings.Steps),
		ctx:        ctx,
		cancel:     cancel,
		closed:     make(chan struct{}),
		onTrigger:  opts.OnTrigger,
		onComplete: opts.OnComplete,
	}

	renderers := animator.Renderers{s.hub}
	for _, sink := range opts.Sinks {
		renderers = append(renderers, sink.Renderer(id))
	}

	anim, err := animator.New(cat, settings, renderers,
		animator.WithClock(clock),
		animator.WithLogger(logger))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create animator: %w", err)
	}
	s.animator = anim

	threshold := opts.Threshold
	tr, err := trigger.New(threshold, s.start)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create visibility trigger: %w", err)
	}
	s.trigger = tr

	logger.Debug("session mounted", "metrics", cat.Len(), "threshold", threshold)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Catalog returns the catalog the session was mounted with.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// CreatedAt returns the mount time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Threshold returns the visibility threshold.
func (s *Session) Threshold() float64 {
	return s.trigger.Threshold()
}

// ReportVisibility feeds one visibility observation. It returns true when
// this observation started the animation.
func (s *Session) ReportVisibility(e trigger.Entry) (bool, error) {
	if s.isClosed() {
		return false, ErrClosed
	}
	return s.trigger.Observe(e), nil
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	switch {
	case s.isClosed():
		return StatusClosed
	case s.animator.Completed():
		return StatusComplete
	case s.trigger.Triggered():
		return StatusAnimating
	default:
		return StatusIdle
	}
}

// Triggered reports whether the visibility flag is set.
func (s *Session) Triggered() bool {
	return s.trigger.Triggered()
}

// Snapshot returns the latest frame of every metric in display order.
func (s *Session) Snapshot() []animator.Frame {
	return s.hub.snapshot()
}

// Subscribe streams session events. The returned channel first replays the
// latest frames and is closed on unsubscribe, Close, or when the
// subscriber falls behind.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.hub.subscribe()
}

// Subscribers returns the number of live subscribers.
func (s *Session) Subscribers() int {
	return s.hub.subscribers()
}

// Done is closed when the animation finished or the session closed.
func (s *Session) Done() <-chan struct{} {
	return s.animator.Done()
}

// Close unmounts the session: the trigger is detached, pending ticks are
// cancelled and subscribers are released. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.trigger.Detach()
		s.cancel()
		s.animator.Stop()
		s.hub.close()
		s.logger.Debug("session unmounted", "status", s.animatorStatus())
	})
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Session) animatorStatus() string {
	if s.animator.Completed() {
		return string(StatusComplete)
	}
	if s.trigger.Triggered() {
		return "interrupted"
	}
	return string(StatusIdle)
}

// start runs from the trigger callback exactly once.
func (s *Session) start() {
	if err := s.animator.Animate(s.ctx); err != nil {
		s.logger.Warn("failed to start animation", "error", err)
		return
	}
	s.logger.Info("statistics visible, animation started",
		"metrics", s.catalog.Len(),
		"settings", s.animator.Settings())

	if s.onTrigger != nil {
		s.onTrigger(s)
	}

	go s.await()
}

func (s *Session) await() {
	<-s.animator.Done()
	if !s.animator.Completed() {
		return
	}
	s.hub.markComplete()
	s.logger.Debug("animation complete")
	if s.onComplete != nil {
		s.onComplete(s)
	}
}
