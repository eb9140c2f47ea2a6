// Package server provides the HTTP server and routing for Swarmfolio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/swarmfolio/internal/config"
	"github.com/aristath/swarmfolio/internal/modules/optimization"
	optimizationhandlers "github.com/aristath/swarmfolio/internal/modules/optimization/handlers"
	"github.com/aristath/swarmfolio/internal/modules/results"
)

// Config holds server configuration
type Config struct {
	Log              zerolog.Logger
	Cfg              *config.Config
	OptimizerService *optimization.OptimizerService
	RunRepository    *results.RunRepository
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	cron    *cron.Cron
	log     zerolog.Logger
	cfg     *config.Config
	service *optimization.OptimizerService
}

// New creates a new HTTP server with all routes registered.
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		cfg:     cfg.Cfg,
		service: cfg.OptimizerService,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Minute))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	optimizationHandler := optimizationhandlers.NewHandler(cfg.OptimizerService, cfg.RunRepository, cfg.Log)
	s.router.Route("/api", func(r chi.Router) {
		optimizationHandler.RegisterRoutes(r)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // optimization runs can take a while
	}

	return s
}

// Router returns the chi router, used by tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins listening for HTTP requests and starts the scheduled
// re-optimization job when one is configured. Blocks until the listener
// stops.
func (s *Server) Start() error {
	if s.cfg.ReoptimizeCron != "" {
		if err := s.startReoptimizeJob(); err != nil {
			return err
		}
	}

	s.log.Info().Int("port", s.cfg.Port).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server and the cron scheduler.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cron != nil {
		s.cron.Stop()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// startReoptimizeJob schedules periodic re-optimization with the
// configured defaults.
func (s *Server) startReoptimizeJob() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.ReoptimizeCron, func() {
		s.log.Info().Msg("Scheduled re-optimization starting")
		if _, err := s.service.Optimize(optimization.RunParams{}); err != nil {
			s.log.Error().Err(err).Msg("Scheduled re-optimization failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid re-optimization cron expression %q: %w", s.cfg.ReoptimizeCron, err)
	}
	s.cron.Start()
	s.log.Info().Str("cron", s.cfg.ReoptimizeCron).Msg("Scheduled re-optimization enabled")
	return nil
}
