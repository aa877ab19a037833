// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Meserio catalog API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/meserio/internal/answer"
	"github.com/taibuivan/meserio/internal/api"
	"github.com/taibuivan/meserio/internal/platform/config"
	"github.com/taibuivan/meserio/internal/platform/constants"
	"github.com/taibuivan/meserio/internal/platform/migration"
	pgstore "github.com/taibuivan/meserio/internal/platform/postgres"
	redisstore "github.com/taibuivan/meserio/internal/platform/redis"
	"github.com/taibuivan/meserio/internal/platform/sec"
	"github.com/taibuivan/meserio/internal/question"
	"github.com/taibuivan/meserio/internal/taxonomy"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "meserio"))
	slog.SetDefault(log)

	log.Info("[Meserio] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "meserio"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Any("languages", cfg.SupportedLanguages),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Verification ─────────────────────────────────────────────
	// Tokens are minted by the identity service; this API only verifies.
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(log,
		api.DependencyCheck{Name: "postgres", Ping: func() error {
			return pgstore.Ping(context.Background(), pool)
		}},
		api.DependencyCheck{Name: "redis", Ping: func() error {
			return redisstore.Ping(context.Background(), rdb)
		}},
	)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	treeCache := taxonomy.NewTreeCache(rdb, log)

	taxonomyRepository := taxonomy.NewRepository(pool)
	taxonomyService := taxonomy.NewService(taxonomyRepository, treeCache, cfg.SupportedLanguages)
	taxonomyHandler := taxonomy.NewHandler(taxonomyService)

	questionRepository := question.NewRepository(pool)
	questionService := question.NewService(questionRepository, cfg.SupportedLanguages)
	questionHandler := question.NewHandler(questionService)

	answerRepository := answer.NewRepository(pool)
	answerResolver := answer.NewResolver(log)
	answerService := answer.NewService(answerRepository, questionRepository, answerResolver, cfg.SupportedLanguages)
	answerHandler := answer.NewHandler(answerService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Taxonomy:  taxonomyHandler,
		Question:  questionHandler,
		Answer:    answerHandler,
	}

	server := api.NewServer(context.Background(), cfg, log, verifier, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
