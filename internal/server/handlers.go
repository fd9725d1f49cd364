package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/neox5/countbox/internal/animator"
	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/format"
	"github.com/neox5/countbox/internal/session"
	"github.com/neox5/countbox/internal/trigger"
)

type metricView struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Target      float64       `json:"target"`
	Kind        string        `json:"kind"`
	Color       string        `json:"color"`
	Style       catalog.Style `json:"style"`
	Prefix      string        `json:"prefix,omitempty"`
	Suffix      string        `json:"suffix,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	Initial     string        `json:"initial"`
}

func newMetricView(def catalog.MetricDefinition) metricView {
	return metricView{
		ID:          def.ID,
		Label:       def.Label,
		Description: def.Description,
		Target:      def.Target,
		Kind:        string(def.Kind),
		Color:       string(def.Color.Resolve()),
		Style:       def.Style(),
		Prefix:      def.Prefix,
		Suffix:      def.Suffix,
		Icon:        def.Icon,
		Initial:     format.Initial(def),
	}
}

func catalogView(cat *catalog.Catalog) []metricView {
	out := make([]metricView, 0, cat.Len())
	for _, def := range cat.Definitions() {
		out = append(out, newMetricView(def))
	}
	return out
}

type sessionView struct {
	ID        string           `json:"id"`
	Status    session.Status   `json:"status"`
	Triggered bool             `json:"triggered"`
	Threshold float64          `json:"threshold"`
	CreatedAt time.Time        `json:"created_at"`
	Frames    []animator.Frame `json:"frames"`
}

func newSessionView(s *session.Session) sessionView {
	return sessionView{
		ID:        s.ID(),
		Status:    s.Status(),
		Triggered: s.Triggered(),
		Threshold: s.Threshold(),
		CreatedAt: s.CreatedAt(),
		Frames:    s.Snapshot(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": catalogView(s.catalogs.Catalog()),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		if errors.Is(err, session.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "shutting down")
			return
		}
		s.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Remove(r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visibilityResponse struct {
	Triggered bool `json:"triggered"`
	Fired     bool `json:"fired"`
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var entry trigger.Entry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid visibility entry")
		return
	}
	if entry.Ratio < 0 || entry.Ratio > 1 {
		writeError(w, http.StatusBadRequest, "ratio must be within [0, 1]")
		return
	}

	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}

	fired, err := sess.ReportVisibility(entry)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, visibilityResponse{
		Triggered: sess.Triggered(),
		Fired:     fired,
	})
}
