// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the whole
// dependency graph is assembled in one place:
//
//	config → sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handler layer
// ever sees an http.Request.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/prep-tracker/internal/ai"
	"github.com/sakif/prep-tracker/internal/auth"
	"github.com/sakif/prep-tracker/internal/config"
	"github.com/sakif/prep-tracker/internal/handler"
	"github.com/sakif/prep-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/prep-tracker/internal/repository/sqlite"
	"github.com/sakif/prep-tracker/internal/sandbox"
	"github.com/sakif/prep-tracker/internal/service"
	"github.com/sakif/prep-tracker/internal/storage"
)

// Server owns the router and the resources that must be closed on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph.
//
// runner is the optional practice sandbox — pass nil when Docker is
// unavailable and the run endpoint degrades to 503 instead.
func New(cfg *config.Config, logger *slog.Logger, runner sandbox.Runner) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(runner); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, services, and handlers to URL patterns.
//
// MIDDLEWARE ORDER MATTERS — it executes in registration order:
//  1. RequestID — unique ID per request, for tracing
//  2. RealIP — real client IP from proxy headers
//  3. Recoverer — panics become 500s instead of crashes
//  4. Logger — one structured line per request
func (s *Server) setupRoutes(runner sandbox.Runner) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Shared infrastructure ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	files, err := storage.NewDiskStore(s.config.UploadDir)
	if err != nil {
		return fmt.Errorf("creating file store: %w", err)
	}

	if s.config.AIBaseURL == "" {
		s.logger.Warn("AI_BASE_URL not set — mock tests and interviews will return errors")
	}
	completer := ai.NewClient(ai.Config{
		BaseURL: s.config.AIBaseURL,
		APIKey:  s.config.AIAPIKey,
		Model:   s.config.AIModel,
	}, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	} else {
		s.logger.Warn("GITHUB_CLIENT_ID not set — GitHub login is disabled")
	}

	// === Services and handlers ===
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, s.logger)

	goalHandler := handler.NewGoalHandler(
		service.NewGoalService(s.db.Goals(), s.logger), s.logger)
	problemHandler := handler.NewProblemHandler(
		service.NewProblemService(s.db.Problems(), s.logger), s.logger)
	resumeHandler := handler.NewResumeHandler(
		service.NewResumeService(s.db.Resumes(), files, s.logger), s.logger)
	applicationHandler := handler.NewApplicationHandler(
		service.NewApplicationService(s.db.Applications(), s.logger), s.logger)
	roadmapHandler := handler.NewRoadmapHandler(
		service.NewRoadmapService(s.db.Roadmaps(), s.logger), s.logger)
	mockTestHandler := handler.NewMockTestHandler(
		service.NewMockTestService(s.db.MockTests(), completer, s.logger), s.logger)
	interviewHandler := handler.NewInterviewHandler(
		service.NewInterviewService(s.db.Interviews(), completer, s.logger), s.logger)
	practiceHandler := handler.NewPracticeHandler(runner, s.logger)

	// === Public routes ===
	s.router.Post("/api/auth/register", authHandler.HandleRegister)
	s.router.Post("/api/auth/login", authHandler.HandleLogin)
	s.router.Post("/api/auth/logout", authHandler.HandleLogout)

	if github != nil {
		s.router.Get("/auth/github", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// === Protected routes ===
	// Everything below RequireAuth sees a userID in the request context,
	// and every repository call is scoped to it.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/api/auth/me", authHandler.HandleMe)

		r.Route("/api/goals", func(r chi.Router) {
			r.Get("/", goalHandler.HandleList)
			r.Post("/", goalHandler.HandleCreate)
			r.Get("/{id}", goalHandler.HandleGetByID)
			r.Put("/{id}", goalHandler.HandleUpdate)
			r.Delete("/{id}", goalHandler.HandleDelete)
		})

		r.Route("/api/problems", func(r chi.Router) {
			r.Get("/", problemHandler.HandleList)
			r.Post("/", problemHandler.HandleCreate)
			r.Get("/stats", problemHandler.HandleStats)
			r.Get("/{id}", problemHandler.HandleGetByID)
			r.Put("/{id}", problemHandler.HandleUpdate)
			r.Delete("/{id}", problemHandler.HandleDelete)
		})

		r.Post("/api/practice/run", practiceHandler.HandleRun)

		r.Route("/api/resumes", func(r chi.Router) {
			r.Get("/", resumeHandler.HandleList)
			r.Post("/", resumeHandler.HandleCreate)
			r.Get("/{id}", resumeHandler.HandleGetByID)
			r.Put("/{id}", resumeHandler.HandleUpdate)
			r.Delete("/{id}", resumeHandler.HandleDelete)
			r.Post("/{id}/file", resumeHandler.HandleUpload)
			r.Get("/{id}/file", resumeHandler.HandleDownload)
		})

		r.Route("/api/applications", func(r chi.Router) {
			r.Get("/", applicationHandler.HandleList)
			r.Post("/", applicationHandler.HandleCreate)
			r.Get("/{id}", applicationHandler.HandleGetByID)
			r.Put("/{id}", applicationHandler.HandleUpdate)
			r.Delete("/{id}", applicationHandler.HandleDelete)
		})

		r.Get("/api/roadmap", roadmapHandler.HandleGet)
		r.Put("/api/roadmap", roadmapHandler.HandleSave)

		r.Route("/api/mock-tests", func(r chi.Router) {
			r.Get("/", mockTestHandler.HandleList)
			r.Post("/", mockTestHandler.HandleStart)
			r.Get("/{id}", mockTestHandler.HandleGetByID)
			r.Post("/{id}/submit", mockTestHandler.HandleSubmit)
			r.Delete("/{id}", mockTestHandler.HandleDelete)
		})

		r.Route("/api/mock-interviews", func(r chi.Router) {
			r.Get("/", interviewHandler.HandleList)
			r.Post("/", interviewHandler.HandleStart)
			r.Get("/{id}", interviewHandler.HandleGetByID)
			r.Post("/{id}/messages", interviewHandler.HandleMessage)
			r.Post("/{id}/finish", interviewHandler.HandleFinish)
			r.Delete("/{id}", interviewHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// WriteTimeout is generous because interview SSE responses stay
		// open while the model talks.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
