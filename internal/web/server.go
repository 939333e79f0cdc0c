// Package web serves reconciliation reports over HTTP.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/at-addrcompare/internal/web/handlers"
	"github.com/at-addrcompare/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     Config
	runner     handlers.Reconciler
	logger     zerolog.Logger
	registry   *prometheus.Registry
	metrics    *Metrics
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance
func NewServer(config Config, runner handlers.Reconciler, logger zerolog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := &Server{
		config:   config,
		runner:   runner,
		logger:   logger.With().Str("component", "web").Logger(),
		registry: registry,
		metrics:  NewMetrics(registry),
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         config.Addr(),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.RunTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	reportsHandler := &handlers.ReportsHandler{
		Runner:        s.runner,
		Observer:      s.metrics,
		DefaultFormat: s.config.DefaultFormat,
		RunTimeout:    s.config.RunTimeout,
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	reports := api.PathPrefix("/reports").Subrouter()
	reports.HandleFunc("/{gkz}", reportsHandler.GetReport).Methods(http.MethodGet, http.MethodOptions)
	if s.config.Auth.Enabled {
		reports.Use(middleware.Authentication(s.config.Auth.APIKey))
	}

	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging(s.logger, s.metrics))
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}
