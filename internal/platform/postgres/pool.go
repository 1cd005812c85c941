// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres provides the managed PostgreSQL connection pool and the
// context-scoped transaction manager used by the content and provider stores.
//
// # Architecture
//
// Stores never hold a transaction themselves. They ask [QuerierFromCtx] for
// the active [pgx.Tx] (placed there by [TxManager.RunInTx]) and fall back to
// the pool, so one store method works both inside and outside a transaction.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cinesync/internal/platform/config"
	"github.com/taibuivan/cinesync/internal/platform/constants"
)

const (
	maxConnLifetime   = 60 * time.Minute
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// persistReserve is kept on top of the sync worker limit for API reads and
// readiness checks.
const persistReserve = 2

/*
NewPool creates and validates a PostgreSQL pool for the given DSN.

Description: Every sync worker holds at most one connection while persisting,
so MaxConns is raised to fit [constants.MaxBatchSize] workers when configured
lower. Every session carries the configured statement_timeout.

Parameters:
  - context: Bounds the initial connection and ping
  - dsn: string (postgres:// URL or libpq string)
  - settings: config.DatabaseConfig
  - logger: *slog.Logger

Returns:
  - *pgxpool.Pool: Connected pool
  - error: Parse, connect or ping failures
*/
func NewPool(context context.Context, dsn string, settings config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = max(settings.MaxConns, constants.MaxBatchSize+persistReserve)
	poolConfig.MinConns = min(settings.MinConns, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	runtime := poolConfig.ConnConfig.RuntimeParams
	runtime["application_name"] = constants.AppName
	if settings.StatementTimeout > 0 {
		runtime["statement_timeout"] = strconv.FormatInt(settings.StatementTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(context, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Int("min_conns", int(poolConfig.MinConns)),
		slog.Duration("statement_timeout", settings.StatementTimeout),
	)

	return pool, nil
}

// Ping checks the pool within [pingTimeout]; readiness checks call it.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
