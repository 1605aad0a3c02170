// Package server wires configuration, providers, the schedule poller, the
// stream broadcaster, and the HTTP transport into one runnable unit.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/app/games"
	"github.com/preston-bernstein/nba-stream-service/internal/config"
	httpserver "github.com/preston-bernstein/nba-stream-service/internal/http"
	"github.com/preston-bernstein/nba-stream-service/internal/http/handlers"
	"github.com/preston-bernstein/nba-stream-service/internal/logging"
	"github.com/preston-bernstein/nba-stream-service/internal/metrics"
	"github.com/preston-bernstein/nba-stream-service/internal/poller"
	"github.com/preston-bernstein/nba-stream-service/internal/providers"
	"github.com/preston-bernstein/nba-stream-service/internal/snapshots"
	"github.com/preston-bernstein/nba-stream-service/internal/store"
	"github.com/preston-bernstein/nba-stream-service/internal/stream"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.MemoryStore
	gamesService  *games.Service
	broadcaster   *stream.Broadcaster
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
}

// New constructs a server with default provider and poller wiring.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithProvider(cfg, logger, nil)
}

func newServerWithProvider(cfg config.Config, logger *slog.Logger, provider providers.DataProvider) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger)

	if provider == nil {
		provider = newProviderFactory(logger, recorder).build(cfg)
	} else {
		provider = providers.NewRetryingProvider(provider, logger, recorder, normalizeProviderName(cfg.Provider, provider), 0, 0)
	}

	memoryStore := store.NewMemoryStore()
	snapWriter := snapshots.NewWriter(cfg.Snapshots.Dir, cfg.Snapshots.RetentionDays)
	snapStore := snapshots.NewFSStore(cfg.Snapshots.Dir)
	gameSvc := games.NewService(memoryStore, snapStore)

	broadcaster := stream.New(provider, stream.Config{
		ActiveInterval:   time.Duration(cfg.Stream.ActiveInterval),
		WaitingInterval:  time.Duration(cfg.Stream.WaitingInterval),
		NotFoundInterval: time.Duration(cfg.Stream.NotFoundInterval),
		ErrorInterval:    time.Duration(cfg.Stream.ErrorInterval),
		SinkBuffer:       cfg.Stream.SinkBuffer,
	}, logger, recorder, nil)

	plr := poller.New(provider, memoryStore, snapWriter, logger, recorder, time.Duration(cfg.SchedulePollInterval))
	httpSrv := buildHTTPServer(cfg, gameSvc, broadcaster, snapStore, logger, recorder, plr)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         memoryStore,
		gamesService:  gameSvc,
		broadcaster:   broadcaster,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		poller:        plr,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, gameSvc *games.Service, broadcaster *stream.Broadcaster, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:          cfg,
		logger:       logger,
		gamesService: gameSvc,
		broadcaster:  broadcaster,
		httpServer:   httpSrv,
		poller:       plr,
	}
}

func buildHTTPServer(cfg config.Config, gameSvc *games.Service, broadcaster *stream.Broadcaster, snaps snapshots.Store, logger *slog.Logger, recorder *metrics.Recorder, plr Poller) httpServer {
	var statusFn func() poller.Status
	if plr != nil {
		statusFn = plr.Status
	}

	handler := handlers.NewHandler(gameSvc, broadcaster, snaps, logger, statusFn)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	router := httpserver.NewRouter(handler, logger, recorder)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the poller and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.poller.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.poller.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop poller", err)
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "broadcaster shutdown timed out", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
