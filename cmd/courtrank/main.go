package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/courtrank/internal/adapters/http/api"
	"github.com/okian/courtrank/internal/adapters/http/swagger"
	"github.com/okian/courtrank/internal/adapters/outcomelog"
	service "github.com/okian/courtrank/internal/app"
	"github.com/okian/courtrank/internal/config"
	"github.com/okian/courtrank/internal/domain/graph"
	"github.com/okian/courtrank/internal/domain/ranking"
	"github.com/okian/courtrank/pkg/logger"
	"github.com/okian/courtrank/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Our own system gauges replace the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.New("failed to load config: " + err.Error())
	}
	if err := setupLogging(ctx, cfg); err != nil {
		return err
	}
	log := logger.Get()

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := seed(ctx, svc, cfg.SeedFile); err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return errors.New("failed to start service: " + err.Error())
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg.MaxRankingsLimit),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return errors.New("HTTP server failed: " + err.Error())
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// setupLogging switches to the configured format and level.
func setupLogging(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return errors.New("failed to initialize logging: " + err.Error())
	}
	// Fall back to info on an invalid level.
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// newService builds the ranking service from configuration.
func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	policy, err := graph.ParseEdgePolicy(cfg.EdgePolicy)
	if err != nil {
		return nil, errors.New("invalid edge policy: " + err.Error())
	}
	return service.New(
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.GameQueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithRebuildInterval(time.Duration(cfg.RebuildIntervalMS)*time.Millisecond),
		service.WithRankingOptions(
			ranking.WithEdgePolicy(policy),
			ranking.WithDamping(cfg.Damping),
			ranking.WithTolerance(cfg.Tolerance),
			ranking.WithMaxIterations(cfg.MaxIterations),
		),
	), nil
}

// seed loads the configured outcome log into svc. An empty path is a no-op.
func seed(ctx context.Context, svc *service.Service, path string) error {
	if path == "" {
		return nil
	}
	log, stats, err := outcomelog.ReadFile(ctx, path)
	if err != nil {
		return errors.New("failed to read seed file: " + err.Error())
	}
	kept := svc.Seed(ctx, log)
	logger.Get().Info(ctx, "seed file loaded",
		logger.String("path", path),
		logger.Int("rows", stats.Rows),
		logger.Int("games", kept),
		logger.Int("discarded", stats.Discarded()),
	)
	return nil
}

// newMux registers the docs and business routes.
func newMux(ctx context.Context, svc *service.Service, maxLimit int) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, maxLimit).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies GetStats into the gauges it does not already own.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if edges, ok := stats["edges"].(int); ok {
		metrics.UpdateGraphEdges(edges)
	}
}
