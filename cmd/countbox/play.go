package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/neox5/countbox/internal/config"
	"github.com/neox5/countbox/internal/session"
	"github.com/neox5/countbox/internal/trigger"
	"github.com/urfave/cli/v3"
)

func play(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if d := cmd.Duration("duration"); d > 0 {
		cfg.Animation.Duration = d
	}
	if n := cmd.Int("steps"); n > 0 {
		cfg.Animation.Steps = n
	}
	if err := cfg.Animation.Validate(); err != nil {
		return err
	}

	logger := setupLogger(os.Stderr, cfg.Settings.Log, cmd.Bool("debug"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPlay(ctx, os.Stdout, cfg, logger)
}

// runPlay mounts one session, fires its trigger and prints one row per
// animation step until every metric reached its target.
func runPlay(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger) error {
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	s, err := session.New("play", cat, session.Options{
		Settings:  cfg.Animation.Settings(),
		Threshold: cfg.Animation.Threshold,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to mount session: %w", err)
	}
	defer s.Close()

	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	if _, err := s.ReportVisibility(trigger.Entry{Ratio: 1, Intersecting: true}); err != nil {
		return err
	}

	steps := cfg.Animation.Steps
	rows := make(map[int][]string)
	ids := make(map[string]int, cat.Len())
	for i, def := range cat.Definitions() {
		ids[def.ID] = i
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("session closed before completion")
			}
			if ev.Type == session.EventComplete {
				fmt.Fprintln(w, "complete")
				return nil
			}

			f := ev.Frame
			row, ok := rows[f.Step]
			if !ok {
				row = make([]string, cat.Len())
				rows[f.Step] = row
			}
			row[ids[f.MetricID]] = f.MetricID + "=" + f.Display

			if filled(row) {
				fmt.Fprintf(w, "%*d/%d  %s\n", len(fmt.Sprint(steps)), f.Step, steps, strings.Join(row, "  "))
				delete(rows, f.Step)
			}
		}
	}
}

func filled(row []string) bool {
	for _, cell := range row {
		if cell == "" {
			return false
		}
	}
	return true
}
