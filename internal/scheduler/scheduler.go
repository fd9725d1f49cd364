// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler(gocron.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger,
	}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Debug("starting scheduler", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Debug("stopping scheduler")
	return s.scheduler.Shutdown()
}

// Every runs fn at the given interval. Runs never overlap; a run that is
// still busy when the next is due pushes the next one back.
// Returns the job ID.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("job %q: interval must be positive: %s", name, interval)
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.logger.Debug("scheduled job", "name", name, "interval", interval)
	return job.ID().String(), nil
}
