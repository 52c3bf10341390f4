// Package server exposes the engine's read-only API surface over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/scheduler"
	"github.com/aristath/riskdesk/internal/services"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Port        int
	DevMode     bool
	Calc        *services.CalculationService
	Runs        *services.RunRepository
	Scheduler   *scheduler.Scheduler
	RecalcJob   scheduler.Job
	PriceSync   scheduler.Job
	HistoryDB   *database.DB
	PortfolioDB *database.DB
	AnalyticsDB *database.DB
}

// Server represents the HTTP server
type Server struct {
	router       *chi.Mux
	server       *http.Server
	log          zerolog.Logger
	riskHandlers *RiskHandlers
	sysHandlers  *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		riskHandlers: NewRiskHandlers(cfg.Calc, cfg.Runs, cfg.Log),
		sysHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Scheduler,
			cfg.RecalcJob,
			cfg.PriceSync,
			cfg.HistoryDB,
			cfg.PortfolioDB,
			cfg.AnalyticsDB,
		),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if devMode {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/risk/{portfolioID}", func(r chi.Router) {
			r.Get("/betas", s.riskHandlers.HandleGetBetas)
			r.Get("/exposures", s.riskHandlers.HandleGetExposures)
			r.Get("/metrics", s.riskHandlers.HandleGetMetrics)
			r.Post("/stress", s.riskHandlers.HandleStressTest)
		})
		r.Get("/risk/scenarios", s.riskHandlers.HandleListScenarios)

		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.sysHandlers.HandleHealth)
			r.Post("/jobs/recalculate", s.sysHandlers.HandleTriggerRecalc)
			r.Post("/jobs/price-sync", s.sysHandlers.HandleTriggerPriceSync)
		})
	})
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
