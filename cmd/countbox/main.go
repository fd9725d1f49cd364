package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/neox5/countbox/internal/app"
	"github.com/neox5/countbox/internal/config"
	"github.com/neox5/countbox/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	cmd := &cli.Command{
		Name:    "countbox",
		Usage:   "Statistics section with count-up animations triggered on visibility",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
				Sources: cli.EnvVars("COUNTBOX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("COUNTBOX_DEBUG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the statistics page and session API",
				Action: serve,
			},
			{
				Name:  "play",
				Usage: "run one animation in the terminal",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "duration",
						Usage: "override animation duration",
					},
					&cli.IntFlag{
						Name:  "steps",
						Usage: "override animation step count",
					},
				},
				Action: play,
			},
			{
				Name:   "validate",
				Usage:  "validate the configuration and print the catalog",
				Action: validate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the default logger from config and flags.
func setupLogger(w io.Writer, settings config.LogConfig, debug bool) *slog.Logger {
	level := settings.Level.Level()
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch settings.Format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(os.Stdout, cfg.Settings.Log, cmd.Bool("debug"))
	logger.Info("starting countbox", "version", version.String(), "config", configPath)
	logger.Debug("configuration",
		"server", cfg.Server,
		"animation", cfg.Animation,
		"metrics", len(cfg.Metrics))

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(shutdownCtx, cfg, configPath, logger)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := application.Run(shutdownCtx); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
