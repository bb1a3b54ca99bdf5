package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/ats"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/config"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/events"
	"github.com/saty-git24/TALENTFLOW-sub000/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	manager        ats.Manager
	hub            *events.Hub
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	manager ats.Manager,
	hub *events.Hub,
	repo storage.Repository,
) *Server {
	s := &Server{
		config:         cfg,
		manager:        manager,
		hub:            hub,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		// Jobs and their assessments
		r.Route("/jobs", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("jobs:read")).Get("/", s.handleListJobs)
			r.With(s.authMiddleware.RequirePermission("jobs:write")).Post("/", s.handleCreateJob)

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("jobs:read")).Get("/", s.handleGetJob)
				r.With(s.authMiddleware.RequirePermission("jobs:write")).Put("/", s.handleUpdateJob)

				r.Route("/assessment", func(r chi.Router) {
					r.With(s.authMiddleware.RequirePermission("assessments:read")).Get("/", s.handleGetAssessment)
					r.With(s.authMiddleware.RequirePermission("assessments:write")).Put("/", s.handleSaveAssessment)
					r.With(s.authMiddleware.RequirePermission("assessments:read")).Get("/draft", s.handleGetDraft)
					r.With(s.authMiddleware.RequirePermission("assessments:write")).Put("/draft", s.handleSaveDraft)
					r.With(s.authMiddleware.RequirePermission("assessments:write")).Post("/attempts", s.handleStartAttempt)
				})
			})
		})

		// Dry-run definition check, not tied to a job
		r.With(s.authMiddleware.RequirePermission("assessments:read")).
			Post("/assessments/validate", s.handleValidateAssessment)

		// Candidates
		r.Route("/candidates", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("candidates:read")).Get("/", s.handleListCandidates)
			r.With(s.authMiddleware.RequirePermission("candidates:write")).Post("/", s.handleCreateCandidate)

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("candidates:read")).Get("/", s.handleGetCandidate)
				r.With(s.authMiddleware.RequirePermission("candidates:write")).Post("/move", s.handleMoveStage)
				r.With(s.authMiddleware.RequirePermission("candidates:read")).Get("/timeline", s.handleTimeline)
				r.With(s.authMiddleware.RequirePermission("candidates:read")).Get("/audit", s.handleAuditCandidate)
				r.With(s.authMiddleware.RequirePermission("candidates:read")).Get("/next-stages", s.handleNextStages)
				r.With(s.authMiddleware.RequirePermission("assessments:read")).Get("/attempts", s.handleListAttempts)
			})
		})

		// Assessment attempts
		r.Route("/attempts/{id}", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("assessments:read")).Get("/", s.handleGetAttempt)
			r.With(s.authMiddleware.RequirePermission("assessments:write")).Put("/responses", s.handleSaveResponses)
			r.With(s.authMiddleware.RequirePermission("assessments:write")).Post("/submit", s.handleSubmitAttempt)
		})

		// Live pipeline board stream
		r.With(s.authMiddleware.RequirePermission("candidates:read")).
			Get("/pipeline/ws", s.handlePipelineWS)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
