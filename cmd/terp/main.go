package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/terp/internal/bridge"
	"github.com/GriffinCanCode/terp/internal/config"
	"github.com/GriffinCanCode/terp/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/terp/internal/logging"
	"github.com/GriffinCanCode/terp/internal/project"
	"github.com/GriffinCanCode/terp/internal/sandbox"
)

// errNoProject is returned when player mode is started without a project
var errNoProject = errors.New("player mode requires at least one project")

func main() {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "terp: %v\n", err)
		os.Exit(1)
	}
}

// run boots a bridge from args and loads every project named there. When
// a metrics address is configured it keeps serving until ctx is done.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.LoadOrDefault()

	// Parse flags; env values are the defaults
	flags := flag.NewFlagSet("terp", flag.ContinueOnError)
	mode := flags.String("mode", cfg.Bridge.Mode, "Runtime mode ("+modeList()+")")
	module := flags.String("module", cfg.Sandbox.Module, "Path to the runtime module (empty = embedded)")
	dev := flags.Bool("dev", cfg.Logging.Development, "Development logging (colored, debug level)")
	metricsAddr := flags.String("metrics", cfg.Metrics.Address, "Serve Prometheus metrics on this address")
	console := flags.Bool("console", false, "Print runtime console output to stdout")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := newLogger(cfg, *dev)
	defer logger.Sync()

	m, err := sandbox.ParseMode(*mode)
	if err != nil {
		return err
	}

	patterns := flags.Args()
	if m == sandbox.ModePlayer && len(patterns) == 0 {
		return errNoProject
	}
	paths, err := project.Expand(patterns...)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := monitoring.NewMetrics(registry)

	src := sandbox.Embedded()
	if *module != "" {
		src = sandbox.FileSource(*module)
	}
	factory := sandbox.NewFactory(src,
		sandbox.WithConfig(cfg.SandboxSettings()),
		sandbox.WithLogger(logger),
		sandbox.WithMetrics(metrics),
	)

	opts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithMetrics(metrics),
	}
	if cfg.Bridge.SuspendPrefix != "" {
		opts = append(opts, bridge.WithSuspendPrefix(cfg.Bridge.SuspendPrefix))
	}
	b := bridge.New(bridge.Sandboxed(factory), opts...)
	defer b.Close()

	var srv *metricsServer
	if *metricsAddr != "" {
		srv = startMetrics(*metricsAddr, newMux(registry, b.Ready()), logger)
		defer srv.shutdown(logger)
	}

	if err := b.Init(ctx, m); err != nil {
		return fmt.Errorf("init %s: %w", m, err)
	}

	if err := loadProjects(ctx, b, m, paths, logger); err != nil {
		return err
	}

	if *console {
		for _, entry := range b.Console() {
			fmt.Fprintln(stdout, entry.Message)
		}
	}

	if srv == nil {
		return nil
	}

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully")
		return nil
	case err := <-srv.errs:
		return fmt.Errorf("metrics server: %w", err)
	}
}

// loadProjects reads and loads paths in order. In editor mode a missing
// project is skipped so the editor starts on a new one.
func loadProjects(ctx context.Context, b *bridge.Bridge, mode sandbox.Mode, paths []string, logger *logging.Logger) error {
	for _, path := range paths {
		p, err := project.Read(ctx, path)
		if err != nil {
			if mode == sandbox.ModeEditor && errors.Is(err, os.ErrNotExist) {
				logger.Info("Project not found, starting with a new project", zap.String("path", path))
				continue
			}
			return err
		}
		if err := b.Load(p.Data); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		logger.Info("Project loaded",
			zap.String("path", path),
			zap.String("format", string(p.Format)),
			zap.Int("size", p.Size),
		)
	}
	return nil
}

// newLogger builds the configured logger, falling back to the stock
// configuration when the configured level is invalid.
func newLogger(cfg *config.Config, dev bool) *logging.Logger {
	cfg.Logging.Development = dev
	if dev && os.Getenv("LOG_LEVEL") == "" {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.LoggerSettings())
	if err == nil {
		return logger
	}

	if dev {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}
	logger.Warn("Invalid log configuration, using defaults", zap.String("level", cfg.Logging.Level), zap.Error(err))
	return logger
}

func modeList() string {
	names := make([]string, 0, len(sandbox.Modes()))
	for _, m := range sandbox.Modes() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

// newMux serves metrics and a readiness check that succeeds once the
// bridge holds a loader.
func newMux(registry *prometheus.Registry, ready <-chan struct{}) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ready:
			fmt.Fprintln(w, "ready")
		default:
			http.Error(w, "not ready", http.StatusServiceUnavailable)
		}
	})
	return mux
}

type metricsServer struct {
	srv  *http.Server
	errs chan error
}

// startMetrics serves handler on addr in the background
func startMetrics(addr string, handler http.Handler, logger *logging.Logger) *metricsServer {
	s := &metricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		errs: make(chan error, 1),
	}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))
	return s
}

func (s *metricsServer) shutdown(logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		logger.Warn("Metrics server shutdown failed", zap.Error(err))
	}
}
