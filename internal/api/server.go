// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/meserio/internal/answer"
	"github.com/taibuivan/meserio/internal/platform/config"
	"github.com/taibuivan/meserio/internal/platform/constants"
	"github.com/taibuivan/meserio/internal/platform/middleware"
	"github.com/taibuivan/meserio/internal/platform/sec"
	"github.com/taibuivan/meserio/internal/question"
	"github.com/taibuivan/meserio/internal/taxonomy"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Taxonomy manages the cluster, category, and service tree.
	Taxonomy *taxonomy.Handler

	// Question manages the category form definitions.
	Question *question.Handler

	// Answer handles firm submissions and public profile reads.
	Answer *answer.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// # Route Groups
//   - /api/v1/catalog : Public reads (tree, category lookups, firm profiles).
//   - /api/v1/forms   : Public form definitions for rendering.
//   - /api/v1/firm    : Firm-scoped answer submission, requires a firm token.
//   - /api/v1/admin   : Back-office management, requires staff roles.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {

		// Public catalog reads for visitors and search.
		api.Route("/catalog", func(catalog chi.Router) {
			catalog.Mount("/firms", h.Answer.PublicRoutes())
			catalog.Mount("/", h.Taxonomy.PublicRoutes())
		})

		// Form definitions, public so the firm console can render before login.
		api.Mount("/forms", h.Question.FormRoutes())

		// Firm-scoped answer management. The firm identity comes from the
		// verified token, never from the payload.
		api.Route("/firm", func(firm chi.Router) {
			firm.Use(middleware.RequireFirm)
			firm.Mount("/", h.Answer.FirmRoutes())
		})

		// Back-office management.
		api.Route("/admin", func(admin chi.Router) {
			admin.With(middleware.RequireRole(sec.RoleAdmin)).
				Mount("/taxonomy", h.Taxonomy.AdminRoutes())
			admin.With(middleware.RequireRole(sec.RoleModerator)).
				Mount("/questions", h.Question.AdminRoutes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
