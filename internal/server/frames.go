package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/neox5/countbox/internal/session"
)

// handleFrames streams a session's frames as server-sent events. The
// stream replays the latest frame per metric, then follows the animation
// and ends after the complete event.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sess, err := s.sessions.Get(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable Nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	s.logger.Debug("frame stream opened", "session", id)

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("frame stream closed (client disconnect)", "session", id)
			return

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				s.logger.Debug("frame stream closed (session unmounted)", "session", id)
				return
			}

			if err := writeEvent(w, ev); err != nil {
				s.logger.Debug("failed to write frame event", "session", id, "error", err)
				return
			}
			flusher.Flush()

			if ev.Type == session.EventComplete {
				s.logger.Debug("frame stream closed (complete)", "session", id)
				return
			}
		}
	}
}

// writeEvent writes ev in SSE format.
func writeEvent(w http.ResponseWriter, ev session.Event) error {
	var data []byte
	switch ev.Type {
	case session.EventFrame:
		b, err := json.Marshal(ev.Frame)
		if err != nil {
			return fmt.Errorf("failed to marshal frame: %w", err)
		}
		data = b
	default:
		data = []byte("{}")
	}

	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
