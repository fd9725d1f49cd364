package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neox5/countbox/internal/animator"
	"github.com/neox5/countbox/internal/config"
)

// Publisher is the subset of *nats.Conn used by the frame sink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes every rendered frame as JSON on
// "<subject>.<sessionID>".
type NATSSink struct {
	conn    *nats.Conn
	pub     Publisher
	subject string
	logger  *slog.Logger
}

// NewNATSSink connects to the configured NATS server.
func NewNATSSink(cfg *config.NATSExportConfig, logger *slog.Logger) (*NATSSink, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("nats export is disabled")
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("countbox"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s := newNATSSink(conn, cfg.Subject, logger)
	s.conn = conn

	s.logger.Info("nats frame sink initialized", "url", cfg.URL, "subject", cfg.Subject)
	return s, nil
}

func newNATSSink(pub Publisher, subject string, logger *slog.Logger) *NATSSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSSink{pub: pub, subject: subject, logger: logger}
}

// Subject returns the subject frames of sessionID are published on.
func (s *NATSSink) Subject(sessionID string) string {
	return s.subject + "." + sessionID
}

// Renderer returns a renderer publishing the frames of one session.
func (s *NATSSink) Renderer(sessionID string) animator.Renderer {
	subject := s.Subject(sessionID)

	return animator.RendererFunc(func(f animator.Frame) {
		data, err := json.Marshal(f)
		if err != nil {
			s.logger.Warn("failed to marshal frame", "metric", f.MetricID, "error", err)
			return
		}
		if err := s.pub.Publish(subject, data); err != nil {
			s.logger.Warn("failed to publish frame",
				"subject", subject,
				"metric", f.MetricID,
				"error", err)
		}
	})
}

// Close drains buffered frames and closes the connection.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}
