package animator

import (
	"math"

	"github.com/neox5/countbox/internal/catalog"
)

// State is a point-in-time view of one metric's animation.
type State struct {
	MetricID       string
	Current        float64
	StepsCompleted int
	Steps          int
}

// Done reports whether the sequence reached its terminal value.
func (s State) Done() bool {
	return s.StepsCompleted >= s.Steps
}

// sequence is the mutable animation state of one metric. It is owned by
// the animator's wheel and never shared.
type sequence struct {
	def       catalog.MetricDefinition
	increment float64
	current   float64
	step      int
	steps     int
}

func newSequence(def catalog.MetricDefinition, steps int) *sequence {
	return &sequence{
		def:       def,
		increment: def.Target / float64(steps),
		steps:     steps,
	}
}

// advance moves one step forward and reports whether the sequence is done.
// The last step lands exactly on the target.
func (s *sequence) advance() bool {
	if s.step >= s.steps {
		return true
	}

	s.step++
	if s.step == s.steps {
		s.current = s.def.Target
		return true
	}

	s.current = math.Min(s.increment*float64(s.step), s.def.Target)
	return false
}

func (s *sequence) done() bool {
	return s.step >= s.steps
}

func (s *sequence) snapshot() State {
	return State{
		MetricID:       s.def.ID,
		Current:        s.current,
		StepsCompleted: s.step,
		Steps:          s.steps,
	}
}
