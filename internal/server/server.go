package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/preston-bernstein/derby-clock-service/internal/app/bout"
	"github.com/preston-bernstein/derby-clock-service/internal/config"
	"github.com/preston-bernstein/derby-clock-service/internal/events"
	httpserver "github.com/preston-bernstein/derby-clock-service/internal/http"
	"github.com/preston-bernstein/derby-clock-service/internal/http/handlers"
	"github.com/preston-bernstein/derby-clock-service/internal/http/live"
	"github.com/preston-bernstein/derby-clock-service/internal/http/middleware"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
	"github.com/preston-bernstein/derby-clock-service/internal/metrics"
	"github.com/preston-bernstein/derby-clock-service/internal/rosters"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
	"github.com/preston-bernstein/derby-clock-service/internal/ticker"
)

var (
	metricsSetup = metrics.Setup
	natsConnect  = func(cfg events.NATSConfig, logger *slog.Logger) (events.Publisher, error) {
		return events.NewNATSPublisher(cfg, logger)
	}
)

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	service       *bout.Service
	httpServer    httpServer
	metricsServer httpServer
	ticker        Ticker
	hub           *live.Hub
	publisher     events.Publisher
	archive       *snapshots.SQLiteStore
	metricsStop   func(context.Context) error
}

// New constructs a server wired to the real clock.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(cfg, logger, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	clk := clockwork.NewRealClock()

	catalog, err := rosters.LoadDir(cfg.RosterDir)
	if err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}
	logger.Info("rosters loaded", "dir", cfg.RosterDir, "count", len(catalog.List()))

	archive, err := buildArchive(cfg, logger)
	if err != nil {
		return nil, err
	}

	var svc *bout.Service
	hub := live.NewHub(func() (any, error) { return svc.Scoreboard() }, logger, clk, cfg.PushInterval)
	publisher := buildPublisher(cfg, logger, hub)

	opts := bout.Options{
		Store:     store.NewBoutStore(clk),
		Rosters:   catalog,
		Publisher: publisher,
		Recorder:  recorder,
		Logger:    logger,
		Game:      cfg.Bout.GameConfig(),
		Clock:     clk,
	}
	if archive != nil {
		opts.Archive = snapshots.NewRetryingStore(archive, logger, clk, 0, 0)
	}
	svc = bout.NewService(opts)

	tkr := ticker.New(svc, logger, recorder, cfg.TickInterval, clk)
	httpSrv := buildHTTPServer(cfg, svc, catalog, hub, logger, recorder, tkr)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		service:       svc,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		ticker:        tkr,
		hub:           hub,
		publisher:     publisher,
		archive:       archive,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, svc *bout.Service, httpSrv httpServer, tkr Ticker) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		httpServer: httpSrv,
		ticker:     tkr,
	}
}

func buildArchive(cfg config.Config, logger *slog.Logger) (*snapshots.SQLiteStore, error) {
	if cfg.Snapshots.Path == "" {
		return nil, nil
	}
	archive, err := snapshots.Open(cfg.Snapshots.Path)
	if err != nil {
		return nil, fmt.Errorf("open bout archive: %w", err)
	}
	logger.Info("bout archive opened", "path", cfg.Snapshots.Path)
	return archive, nil
}

// buildPublisher fans events out to the live hub and, when configured, NATS.
// A NATS connection failure leaves the hub as the only subscriber.
func buildPublisher(cfg config.Config, logger *slog.Logger, hub *live.Hub) events.Publisher {
	if cfg.NATS.URL == "" {
		return hub
	}
	nc, err := natsConnect(events.NATSConfig{
		URL:           cfg.NATS.URL,
		SubjectPrefix: cfg.NATS.SubjectPrefix,
		Name:          cfg.Metrics.ServiceName,
	}, logger)
	if err != nil {
		logger.Warn("nats connect failed, continuing without event publishing", "err", err)
		return hub
	}
	logger.Info("nats publisher connected", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	return events.Multi{hub, nc}
}

func buildHTTPServer(cfg config.Config, svc *bout.Service, catalog *rosters.Catalog, hub *live.Hub, logger *slog.Logger, recorder *metrics.Recorder, tkr Ticker) httpServer {
	var statusFn func() ticker.Status
	if tkr != nil {
		statusFn = tkr.Status
	}

	handler := handlers.NewHandler(svc, catalog, logger, statusFn)
	var liveHandler http.Handler
	if hub != nil {
		liveHandler = hub
	}
	router := httpserver.NewRouter(handler, liveHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
		},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	wrapped := middleware.LoggingMiddleware(logger, recorder, middleware.Recover(logger, c.Handler(router)))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the ticker, live hub and HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.ticker.Start(ctx)
	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
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
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.ticker.Stop(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("failed to stop ticker", "error", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.service != nil {
		s.service.Flush(shutdownCtx)
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil && s.logger != nil {
			s.logger.Warn("event publisher close failed", "error", err)
		}
	}

	if s.archive != nil {
		if err := s.archive.Close(); err != nil && s.logger != nil {
			s.logger.Warn("bout archive close failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
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
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
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
