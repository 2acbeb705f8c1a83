// Package main is the entry point for mempool-block.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/mempool-block/business/mempool"
	mempoolDI "github.com/fd1az/mempool-block/business/mempool/di"
	mempoolDomain "github.com/fd1az/mempool-block/business/mempool/domain"
	"github.com/fd1az/mempool-block/business/overlay"
	overlayDI "github.com/fd1az/mempool-block/business/overlay/di"
	"github.com/fd1az/mempool-block/business/overlay/infra/console"
	"github.com/fd1az/mempool-block/business/trigger"
	triggerDI "github.com/fd1az/mempool-block/business/trigger/di"
	"github.com/fd1az/mempool-block/internal/apm"
	"github.com/fd1az/mempool-block/internal/config"
	"github.com/fd1az/mempool-block/internal/health"
	"github.com/fd1az/mempool-block/internal/logger"
	"github.com/fd1az/mempool-block/internal/metrics"
	"github.com/fd1az/mempool-block/internal/monolith"
	"github.com/fd1az/mempool-block/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type mode int

const (
	modeTUI mode = iota
	modeCLI
	modeSSH
)

func (m mode) String() string {
	switch m {
	case modeCLI:
		return "cli"
	case modeSSH:
		return "ssh"
	default:
		return "tui"
	}
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run headless: open the overlay and print it as log lines")
	sshMode := flag.Bool("ssh", false, "Serve the page over SSH")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mempool-block %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	m := modeTUI
	switch {
	case *sshMode:
		m = modeSSH
	case *cliMode:
		m = modeCLI
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, m); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, m mode) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = m == modeTUI

	logOut, closeLog, err := logOutput(cfg, m)
	if err != nil {
		return err
	}
	defer closeLog()

	log := logger.New(logOut, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting mempool-block",
		"version", version,
		"environment", cfg.App.Environment,
		"mode", m.String(),
	)

	var opts []monolith.Option
	if cfg.Telemetry.Enabled {
		traceProvider, err := apm.NewTraceProvider(ctx, log, apm.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Exporter:    apm.Exporter(cfg.Telemetry.TraceExporter),
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Headers:     cfg.Telemetry.OTLPHeaders,
		})
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer traceProvider.Stop()

		metricOpts := []metrics.OptionFn{
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithReader(metrics.ReaderConfig{Reader: metrics.PrometheusReader}),
			metrics.WithPort(cfg.Telemetry.PrometheusPort),
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			metricOpts = append(metricOpts, metrics.WithReader(metrics.ReaderConfig{
				Reader:   metrics.OTLPReader,
				Endpoint: cfg.Telemetry.OTLPEndpoint,
				Insecure: true,
			}))
		}
		provider, err := metrics.NewProvider(ctx, log, metricOpts...)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(shutdownCtx)
		}()
		if err := provider.Serve(ctx); err != nil {
			log.Warn(ctx, "failed to serve metrics", "error", err)
		}
		opts = append(opts, monolith.WithMeterProvider(provider.MeterProvider()))
	}

	mono := monolith.New(cfg, log, opts...)

	// Dependency order: overlay resolves the mempool feed factory.
	modules := []monolith.Module{
		&mempool.Module{},
		&trigger.Module{},
		&overlay.Module{},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	sessions := &sessionCounter{}
	if cfg.Health.Enabled {
		healthServer := health.NewServer(cfg.Health.Port, version, log)
		registerChecks(healthServer, mono, sessions, m)
		if err := healthServer.Start(ctx); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = healthServer.Stop(shutdownCtx)
			}()
		}
	}

	switch m {
	case modeCLI:
		return runCLI(ctx, mono)
	case modeSSH:
		return runSSH(ctx, cfg.SSH, pageDeps(mono), sessions, log)
	default:
		if err := ui.Run(ctx, pageDeps(mono)); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	}
}

// logOutput picks the log destination. The TUI owns the terminal, so it only logs to a file.
func logOutput(cfg *config.Config, m mode) (io.Writer, func(), error) {
	if cfg.App.LogFile != "" {
		f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if m == modeTUI {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

func pageDeps(mono monolith.Monolith) ui.Deps {
	cfg := mono.Config()
	sr := mono.Services()
	return ui.Deps{
		Controllers: overlayDI.GetControllerFactory(sr),
		Detectors:   triggerDI.GetDetectorFactory(sr),
		Loader:      overlayDI.GetEngineLoader(sr),
		Keyword:     cfg.Trigger.Keyword,
		Cell:        ui.CellSize{W: cfg.Trigger.Swipe.CellWidthPx, H: cfg.Trigger.Swipe.CellHeightPx},
		Clock:       mono.Clock(),
		Logger:      mono.Logger(),
	}
}

func registerChecks(s *health.Server, mono monolith.Monolith, sessions *sessionCounter, m mode) {
	board := mempoolDI.GetFeedFactory(mono.Services()).Board()
	s.RegisterCheck("mempool_feed", func(context.Context) (bool, string) {
		st, ok := board.Latest()
		if !ok {
			return true, "no feed started"
		}
		if st.State == mempoolDomain.StateDisconnected && !st.HasSnapshot {
			return false, "disconnected without data"
		}
		return true, string(st.State)
	})
	if m == modeSSH {
		s.RegisterCheck("ssh_sessions", func(context.Context) (bool, string) {
			return true, fmt.Sprintf("%d active", sessions.Active())
		})
	}
}

// runCLI opens one overlay on a virtual page and prints every render until interrupted.
func runCLI(ctx context.Context, mono monolith.Monolith) error {
	factory := overlayDI.GetControllerFactory(mono.Services())
	renderer := console.NewRenderer(os.Stdout, mono.Clock())
	controller := factory.New(renderer, console.DefaultPage(), ui.NewBell(os.Stdout), nil)

	controller.Activate(ctx)
	err := controller.Run(ctx)
	mono.Logger().Info(context.Background(), "shutting down")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
