// Package trigger fires a callback the first time an observed element
// becomes sufficiently visible.
package trigger

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultThreshold is the visible area fraction required to fire.
const DefaultThreshold = 0.3

// State is the trigger's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateTriggered
	StateDetached
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTriggered:
		return "triggered"
	case StateDetached:
		return "detached"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Entry is one visibility observation of the container.
type Entry struct {
	// Ratio is the fraction of the container's area inside the viewport.
	Ratio float64 `json:"ratio"`

	// Intersecting reports whether any part of the container is visible.
	Intersecting bool `json:"intersecting"`
}

// Trigger is a two-state machine: Idle until the first qualifying entry,
// then Triggered for good. It is safe for concurrent use.
type Trigger struct {
	threshold float64
	fire      func()

	state    atomic.Int32
	fireOnce sync.Once
}

// New creates an idle trigger. fire runs synchronously, exactly once, from
// the Observe call that crosses threshold.
func New(threshold float64, fire func()) (*Trigger, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid visibility threshold: %v (must be within [0, 1])", threshold)
	}
	if fire == nil {
		return nil, fmt.Errorf("trigger callback cannot be nil")
	}
	return &Trigger{threshold: threshold, fire: fire}, nil
}

// Threshold returns the configured visibility threshold.
func (t *Trigger) Threshold() float64 {
	return t.threshold
}

// State returns the current state.
func (t *Trigger) State() State {
	return State(t.state.Load())
}

// Triggered reports whether the trigger has fired.
func (t *Trigger) Triggered() bool {
	return t.State() == StateTriggered
}

// Observe feeds one visibility entry. It returns true only for the call
// that performed the Idle -> Triggered transition.
func (t *Trigger) Observe(e Entry) bool {
	if !e.Intersecting || e.Ratio < t.threshold {
		return false
	}
	if !t.state.CompareAndSwap(int32(StateIdle), int32(StateTriggered)) {
		return false
	}
	t.fireOnce.Do(t.fire)
	return true
}

// Detach stops observing. Entries after Detach have no effect. A trigger
// that already fired stays Triggered.
func (t *Trigger) Detach() {
	t.state.CompareAndSwap(int32(StateIdle), int32(StateDetached))
}
