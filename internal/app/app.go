package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neox5/countbox/internal/catalog"
	"github.com/neox5/countbox/internal/config"
	"github.com/neox5/countbox/internal/exporter"
	"github.com/neox5/countbox/internal/metric"
	"github.com/neox5/countbox/internal/monitor"
	"github.com/neox5/countbox/internal/scheduler"
	"github.com/neox5/countbox/internal/server"
	"github.com/neox5/countbox/internal/session"
)

// App holds initialized application components.
type App struct {
	Config             *config.Config
	Catalogs           *config.CatalogStore
	Sessions           *session.Registry
	Metrics            *metric.Registry
	Scheduler          *scheduler.Scheduler
	Monitor            *monitor.Monitor
	Server             *server.Server
	Watcher            *config.Watcher
	PrometheusExporter *exporter.PrometheusExporter
	OTELExporter       *exporter.OTELExporter
	NATSSink           *exporter.NATSSink

	logger    *slog.Logger
	closeOnce sync.Once
	closeErr  error
}

// New initializes the application. configPath is watched for catalog
// changes when non-empty.
func New(ctx context.Context, cfg *config.Config, configPath string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, logger: logger}
	if err := a.init(ctx, configPath); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, configPath string) error {
	cfg := a.Config

	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	a.Catalogs, err = config.NewCatalogStore(cat)
	if err != nil {
		return fmt.Errorf("failed to create catalog store: %w", err)
	}
	a.Catalogs.OnChange(func(c *catalog.Catalog) {
		a.logger.Info("catalog updated, applies to new sessions",
			"metrics", c.Len(),
			"version", a.Catalogs.Version())
	})

	var sinks []session.Sink
	if cfg.Export.NATSEnabled() {
		a.NATSSink, err = exporter.NewNATSSink(cfg.Export.NATS, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create NATS sink: %w", err)
		}
		sinks = append(sinks, a.NATSSink)
	}

	a.Sessions, err = session.NewRegistry(a.Catalogs, cfg.Sessions.TTL, session.Options{
		Settings:  cfg.Animation.Settings(),
		Threshold: cfg.Animation.Threshold,
		Sinks:     sinks,
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create session registry: %w", err)
	}

	a.Metrics, err = metric.New(a.Sessions, a.Catalogs)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	if cfg.Export.PrometheusEnabled() {
		a.PrometheusExporter = exporter.NewPrometheusExporter(
			cfg.Export.Prometheus.Port,
			cfg.Export.Prometheus.Path,
			a.Metrics,
		)
	}

	if cfg.Export.OTELEnabled() {
		a.OTELExporter, err = exporter.NewOTELExporter(ctx, cfg.Export.OTEL, a.Metrics)
		if err != nil {
			return fmt.Errorf("failed to create OTEL exporter: %w", err)
		}
	}

	a.Scheduler, err = scheduler.New(a.logger)
	if err != nil {
		return err
	}
	if _, err := a.Scheduler.Every("session-sweep", cfg.Sessions.Sweep, a.Sessions.Sweep); err != nil {
		return err
	}

	if cfg.Settings.Monitor.Enabled {
		a.Monitor, err = monitor.New(a.logger, a.Sessions)
		if err != nil {
			return fmt.Errorf("failed to create monitor: %w", err)
		}
		if _, err := a.Scheduler.Every("resource-monitor", cfg.Settings.Monitor.Interval, func() {
			a.Monitor.Collect()
		}); err != nil {
			return err
		}
	}

	if configPath != "" {
		a.Watcher, err = config.NewWatcher(configPath, a.Catalogs, config.DefaultReloadDebounce, a.logger)
		if err != nil {
			return err
		}
	}

	a.Server, err = server.New(a.Sessions, a.Catalogs, server.Options{
		Addr:              cfg.Server.Addr(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		Logger:            a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	// Unmounting ends every frame stream before connections are drained
	a.Server.OnShutdown(a.Sessions.Close)

	return nil
}

// Run starts all components and blocks until ctx is cancelled or a
// component fails. Components are shut down before Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	a.Scheduler.Start()

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			// Serving continues with the catalog loaded at startup
			a.logger.Warn("catalog hot reload disabled", "error", err)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 3)

	wg.Go(func() {
		if err := a.Server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server: %w", err)
		}
	})

	if a.PrometheusExporter != nil {
		wg.Go(func() {
			if err := a.PrometheusExporter.Start(ctx); err != nil {
				errChan <- fmt.Errorf("prometheus exporter: %w", err)
			}
		})
	}

	if a.OTELExporter != nil {
		wg.Go(func() {
			if err := a.OTELExporter.Start(ctx); err != nil {
				errChan <- fmt.Errorf("otel exporter: %w", err)
			}
		})
	}

	a.logger.Debug("--- Application Running ---")

	var runErr error
	select {
	case runErr = <-errChan:
		a.logger.Error("component error", "error", runErr)
		stop()
	case <-ctx.Done():
	}

	a.logger.Debug("--- Shutdown Initiated ---")

	wg.Wait()
	close(errChan)

	errs := []error{runErr}
	for err := range errChan {
		a.logger.Error("component shutdown error", "error", err)
		errs = append(errs, err)
	}
	errs = append(errs, a.Close())

	return errors.Join(errs...)
}

// Close stops background work and unmounts every session.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error

		if a.Watcher != nil {
			if err := a.Watcher.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop watcher: %w", err))
			}
		}
		if a.Scheduler != nil {
			if err := a.Scheduler.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop scheduler: %w", err))
			}
		}
		if a.Sessions != nil {
			a.Sessions.Close()
		}
		if a.NATSSink != nil {
			if err := a.NATSSink.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
