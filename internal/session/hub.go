package session

import (
	"sync"

	"github.com/neox5/countbox/internal/animator"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/format"
)

// EventType names the kind of a session event.
type EventType string

const (
	EventFrame    EventType = "frame"
	EventComplete EventType = "complete"
)

// Event is delivered to session subscribers.
type Event struct {
	Type  EventType
	Frame animator.Frame
}

// hub keeps the latest frame per metric and broadcasts updates to
// subscribers. Subscribers that cannot keep up are dropped.
type hub struct {
	mu       sync.RWMutex
	index    map[string]int
	latest   []animator.Frame
	subs     map[int]chan Event
	nextID   int
	buffer   int
	complete bool
	closed   bool
	dropped  int
}

func newHub(cat *catalog.Catalog, steps int) *hub {
	h := &hub{
		index:  make(map[string]int, cat.Len()),
		latest: make([]animator.Frame, cat.Len()),
		subs:   make(map[int]chan Event),
		buffer: cat.Len()*4 + 32,
	}
	for i, def := range cat.Definitions() {
		h.index[def.ID] = i
		h.latest[i] = animator.Frame{
			MetricID: def.ID,
			Display:  format.Initial(def),
			Steps:    steps,
		}
	}
	return h
}

// Render implements animator.Renderer.
func (h *hub) Render(f animator.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	if i, ok := h.index[f.MetricID]; ok {
		h.latest[i] = f
	}
	h.broadcastLocked(Event{Type: EventFrame, Frame: f})
}

func (h *hub) markComplete() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.complete {
		return
	}
	h.complete = true
	h.broadcastLocked(Event{Type: EventComplete})
}

func (h *hub) broadcastLocked(ev Event) {
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			delete(h.subs, id)
			close(ch)
			h.dropped++
		}
	}
}

// subscribe registers a subscriber. The current frames (and the complete
// marker, if reached) are queued first.
func (h *hub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	for _, f := range h.latest {
		ch <- Event{Type: EventFrame, Frame: f}
	}
	if h.complete {
		ch <- Event{Type: EventComplete}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	return ch, func() { h.unsubscribe(id) }
}

func (h *hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *hub) snapshot() []animator.Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]animator.Frame, len(h.latest))
	copy(out, h.latest)
	return out
}

func (h *hub) subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
