// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the media schema migrations with golang-migrate.
//
// Both binaries call [RunUp] at startup and the integration test helper calls
// it against a throwaway container, so every environment runs the same DDL.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// registers the "pgx5" database scheme
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrDirty reports a half-applied migration that needs a manual fix.
var ErrDirty = errors.New("migration: database is dirty")

/*
RunUp applies every pending migration found in dir.

Parameters:
  - dsn: string (postgres:// URL; rewritten to the pgx5 scheme)
  - dir: string (directory of NNNNNN_name.up.sql / .down.sql files)
  - logger: *slog.Logger

Returns:
  - error: ErrDirty when a previous run stopped half-way
*/
func RunUp(dsn string, dir string, logger *slog.Logger) error {
	source, err := iofs.New(os.DirFS(dir), ".")
	if err != nil {
		return fmt.Errorf("migration: open %s: %w", dir, err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := migrator.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("migration_close_failed", slog.Any("source_error", sourceErr), slog.Any("db_error", dbErr))
		}
	}()
	migrator.Log = migrateLogger{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirty, from)
	}

	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: up failed: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_applied", slog.Uint64("from_version", uint64(from)), slog.Uint64("to_version", uint64(to)))
	return nil
}

// pgx5URL switches libpq URL schemes to the one the pgx/v5 driver registers.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger forwards golang-migrate output to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), slog.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool { return false }
