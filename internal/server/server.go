// Package server assembles the HTTP router and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tunelar/web/internal/config"
	"github.com/tunelar/web/internal/handlers"
	"github.com/tunelar/web/internal/middleware"
	"github.com/tunelar/web/internal/routes"
	"github.com/tunelar/web/internal/static"
)

// NewRouter builds the application router. reg receives the HTTP metrics
// when cfg.MetricsEnabled is set; it may be nil otherwise.
func NewRouter(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	h := handlers.New(routes.NavLinks(), logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.CleanPath)
	r.Use(chimiddleware.GetHead)
	r.Use(middleware.Logger(logger))

	// Metrics sit outside Recovery so recovered panics are counted as 500s.
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		if reg == nil {
			return nil, errors.New("metrics enabled without a registry")
		}
		metrics, err := middleware.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		r.Use(metrics.Middleware)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	r.Use(middleware.Recovery(logger))

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	// Health check
	r.Get("/health", h.Health)

	// Pages
	routes.Register(r, h.Page)
	r.NotFound(h.NotFound)

	return r, nil
}

// Server runs the router with the configured timeouts.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	http   *http.Server
}

// New wraps handler in an http.Server configured from cfg.
func New(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}
}

// ListenAndServe binds the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, waiting at most cfg.ShutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String(), "environment", s.cfg.Environment)
		errc <- s.http.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}
