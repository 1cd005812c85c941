// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the CineSync HTTP API server.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables.
//  2. Initialize structured logger.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Load the provider rule table and the token verifier.
//  7. Wire the pipeline and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/cinesync/internal/api"
	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/pipeline"
	"github.com/taibuivan/cinesync/internal/platform/config"
	"github.com/taibuivan/cinesync/internal/platform/constants"
	"github.com/taibuivan/cinesync/internal/platform/logging"
	"github.com/taibuivan/cinesync/internal/platform/migration"
	pgstore "github.com/taibuivan/cinesync/internal/platform/postgres"
	redisstore "github.com/taibuivan/cinesync/internal/platform/redis"
	"github.com/taibuivan/cinesync/internal/platform/sec"
	"github.com/taibuivan/cinesync/internal/provider"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	// Loaded before the logger because it decides format and level. A
	// failure here is reported with a bootstrap JSON logger.
	cfg, err := config.Load()
	if err != nil {
		must(logging.New("json", false, constants.AppName), err, "load configuration")
	}

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log := logging.New(cfg.LogFormat, cfg.Debug, constants.AppName)
	log.Info("service_initializing",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("version", constants.AppVersion),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.Database, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Rules & Token Verifier ─────────────────────────────────────────
	rules, err := provider.LoadRulesFile(cfg.Sync.RulesPath)
	must(log, err, "load provider rules")

	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	tx := pgstore.NewTxManager(pool)
	contents := content.NewPostgresRepository(pool, tx)
	providers := provider.NewPostgresRepository(pool)

	client := catalog.FromConfig(cfg.Catalog, log)
	coordinator := pipeline.NewCoordinator(tx, contents, providers, nil, log)
	gate := pipeline.NewGate(cfg.Sync.StalenessWindow, nil)
	orchestrator := pipeline.NewOrchestrator(client, contents, rules, coordinator, gate, pipeline.Config{
		Languages:              cfg.Sync.Languages,
		TranslationConcurrency: cfg.Sync.TranslationConcurrency,
	}, log)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Providers: provider.NewHandler(providers, provider.NewReclassifier(providers, tx, rules, log)),
		Sync:      pipeline.NewHandler(orchestrator, pipeline.NewRedisRecorder(rdb), cfg.Catalog.APIKey, log),
	}

	// ── 8. HTTP Server & Graceful Shutdown ────────────────────────────────
	server := api.NewServer(cfg, log, verifier, handlers)

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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
