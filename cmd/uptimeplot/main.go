package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/star/uptimeplot/internal/config"
	"github.com/star/uptimeplot/internal/desktop"
	"github.com/star/uptimeplot/internal/driver"
	"github.com/star/uptimeplot/internal/metrics"
	"github.com/star/uptimeplot/internal/settings"
	"github.com/star/uptimeplot/internal/transform"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one uptimeplot invocation and returns the exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	s, err := settings.Load(args, settings.BootstrapLogger())
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(stdout, "usage: uptimeplot [--config FILE] [--output-dir DIR] [flags]")
		return 0
	}
	if err != nil {
		settings.BootstrapLogger().Error("invalid settings", "error", err)
		return 1
	}
	logger := s.Logger(os.Stderr)

	launcher := desktop.NewLauncher(logger)
	if s.Edit {
		fmt.Fprintf(stdout, "Please edit %q\n", s.ConfigPath)
		if err := launcher.Edit(ctx, runtime.GOOS, s.ConfigPath); err != nil {
			logger.Warn("editor failed", "error", err)
		}
	}
	if desktop.ShouldPrompt(runtime.GOOS, s.Yes) {
		if err := desktop.Confirm(stdin, stdout); err != nil {
			if !errors.Is(err, desktop.ErrDeclined) {
				logger.Error("confirmation failed", "error", err)
			}
			return 1
		}
	}

	cfg, err := config.Load(s.ConfigPath, logger)
	if err != nil {
		if errors.Is(err, config.ErrNoAntennas) || errors.Is(err, config.ErrNoDates) || errors.Is(err, config.ErrNoTargets) {
			fmt.Fprintln(stdout, err)
		}
		logger.Error("failed to load config", "path", s.ConfigPath, "error", err)
		return 1
	}
	logger.Info("config loaded",
		"path", s.ConfigPath,
		"antennas", len(cfg.Antennas()),
		"dates", len(cfg.Dates()),
		"targets", len(cfg.Targets()),
		"skipped_lines", len(cfg.Skipped()),
	)

	resolver, err := transform.ResolverByName(s.Resolver)
	if err != nil {
		logger.Error("invalid resolver", "error", err)
		return 1
	}

	d := driver.New(resolver, driver.Options{
		OutputDir:    s.OutputDir,
		ResolverName: s.Resolver,
		WriteCSV:     s.CSV,
		WriteSummary: s.Summary,
		MinElevation: s.MinElevation,
	}, logger)

	rep, runErr := d.Run(ctx, cfg)
	writeMetrics(s.MetricsFile, logger)
	if runErr != nil {
		logger.Error("run failed", "figures_done", rep.Figures, "error", runErr)
		return 1
	}
	logger.Info("output written", "dir", s.OutputDir, "figures", rep.Figures, "duration", rep.Duration)

	if s.Open {
		launcher.Browse(ctx, runtime.GOOS, s.Browser, s.OutputDir)
	}
	return 0
}

func writeMetrics(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("failed to write metrics", "path", path, "error", err)
	}
}
