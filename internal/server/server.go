package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/neox5/countbox/internal/session"
)

const (
	DefaultHeartbeat         = 15 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
)

// Sessions is the session store served by the API.
type Sessions interface {
	Create() (*session.Session, error)
	Get(id string) (*session.Session, error)
	Remove(id string) error
}

// Options configures the HTTP server.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	Heartbeat         time.Duration
	Logger            *slog.Logger
}

// Server serves the statistics page and the session API.
type Server struct {
	addr      string
	server    *http.Server
	mux       *http.ServeMux
	sessions  Sessions
	catalogs  session.CatalogSource
	heartbeat time.Duration
	logger    *slog.Logger
}

// New creates a new HTTP server.
func New(sessions Sessions, catalogs session.CatalogSource, opts Options) (*Server, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if catalogs == nil {
		return nil, fmt.Errorf("catalog source cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	s := &Server{
		addr:      opts.Addr,
		mux:       http.NewServeMux(),
		sessions:  sessions,
		catalogs:  catalogs,
		heartbeat: opts.Heartbeat,
		logger:    opts.Logger,
	}
	s.routes()

	// Request contexts derive from base, which is cancelled when shutdown
	// begins so open frame streams end instead of holding Shutdown.
	base, cancel := context.WithCancel(context.Background())
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.loggingMiddleware(s.mux),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	s.server.RegisterOnShutdown(cancel)

	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/visibility", s.handleVisibility)
	s.mux.HandleFunc("GET /api/sessions/{id}/frames", s.handleFrames)
}

// OnShutdown registers f to run when graceful shutdown begins, before
// active connections are drained.
func (s *Server) OnShutdown(f func()) {
	s.server.RegisterOnShutdown(f)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving HTTP requests. Blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs requests when debug logging is enabled
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
