// Package server provides the HTTP server and routing for Stresswatch.
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

	"github.com/aristath/stresswatch/internal/config"
	"github.com/aristath/stresswatch/internal/database"
	"github.com/aristath/stresswatch/internal/events"
	"github.com/aristath/stresswatch/internal/modules/assessment"
	assessmenthandlers "github.com/aristath/stresswatch/internal/modules/assessment/handlers"
	"github.com/aristath/stresswatch/internal/modules/customers"
	"github.com/aristath/stresswatch/internal/reliability"
)

// Config holds server configuration
type Config struct {
	Log          zerolog.Logger
	StressDB     *database.DB
	CacheDB      *database.DB
	Config       *config.Config
	Service      *assessment.Service
	CustomerRepo *customers.Repository
	RunRepo      *assessment.Repository
	Bus          *events.Bus
	Backup       *reliability.BackupService // nil when backups are disabled
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	stressDB       *database.DB
	cacheDB        *database.DB
	cfg            *config.Config
	service        *assessment.Service
	customerRepo   *customers.Repository
	systemHandlers *SystemHandlers
	bus            *events.Bus
	backup         *reliability.BackupService
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		stressDB:     cfg.StressDB,
		cacheDB:      cfg.CacheDB,
		cfg:          cfg.Config,
		service:      cfg.Service,
		customerRepo: cfg.CustomerRepo,
		bus:          cfg.Bus,
		backup:       cfg.Backup,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.StressDB, cfg.CacheDB)

	s.setupMiddleware(cfg.Config.DevMode)

	assessHandler := assessmenthandlers.NewHandler(cfg.Service, cfg.CustomerRepo, cfg.RunRepo, cfg.Log)
	s.setupRoutes(assessHandler)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(assessHandler *assessmenthandlers.Handler) {
	// Health check
	s.router.Get("/health", s.handleHealth)

	assessHandler.RegisterRoutes(s.router)

	s.router.Route("/api", func(r chi.Router) {
		// Unified events stream (SSE) - long-lived, no timeout middleware here
		eventsStreamHandler := NewEventsStreamHandler(s.bus, s.log)
		r.Get("/events/stream", eventsStreamHandler.ServeHTTP)

		// Live alert feed (WebSocket)
		alertsHandler := NewAlertsFeedHandler(s.bus, s.log)
		r.Get("/alerts/ws", alertsHandler.ServeHTTP)

		// System monitoring
		r.Get("/system/status", s.systemHandlers.HandleStatus)
		r.Post("/system/backup", s.handleBackupTrigger)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
