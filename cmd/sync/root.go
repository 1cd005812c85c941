// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/pipeline"
	"github.com/taibuivan/cinesync/internal/platform/config"
	"github.com/taibuivan/cinesync/internal/platform/constants"
	"github.com/taibuivan/cinesync/internal/platform/logging"
	"github.com/taibuivan/cinesync/internal/platform/migration"
	pgstore "github.com/taibuivan/cinesync/internal/platform/postgres"
	redisstore "github.com/taibuivan/cinesync/internal/platform/redis"
	"github.com/taibuivan/cinesync/internal/provider"
)

// errCanceled is returned after a partial summary was printed.
var errCanceled = errors.New("sync canceled before completion")

type options struct {
	kind        string
	target      int
	clear       bool
	batch       int
	reclassify  bool
	verifyRules bool
	rulesPath   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "sync",
		Short:         "Synchronize trending catalog items into the local store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil && !errors.Is(err, errCanceled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "sync:", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.kind, "kind", pipeline.KindBoth, "content kind: movie, series or both")
	flags.IntVar(&opts.target, "target", constants.DefaultTargetCount, "items to import per kind (1-1000)")
	flags.BoolVar(&opts.clear, "clear", false, "delete stored items of the kind before importing")
	flags.IntVar(&opts.batch, "batch", constants.DefaultBatchSize, "concurrent item workers (1-10)")
	flags.BoolVar(&opts.reclassify, "reclassify", false, "re-apply the provider rules to stored providers instead of syncing")
	flags.BoolVar(&opts.verifyRules, "verify-rules", false, "check the provider rule table against its examples and exit")
	flags.StringVar(&opts.rulesPath, "rules", "", "provider rule table (defaults to PROVIDER_RULES_PATH or the embedded table)")
	cmd.MarkFlagsMutuallyExclusive("reclassify", "verify-rules")

	return cmd
}

func run(parent context.Context, opts *options, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}

	// ── 1. Rule table only ───────────────────────────────────────────────
	if opts.verifyRules {
		path := opts.rulesPath
		if path == "" {
			path = os.Getenv("PROVIDER_RULES_PATH")
		}
		rules, err := provider.LoadRulesFile(path)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"rules": len(rules.Rules), "examples": len(rules.Examples), "ok": true})
	}

	// ── 2. Configuration & Logger ────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.NewWithWriter(os.Stderr, cfg.LogFormat, cfg.Debug, constants.AppName+"-sync")

	if opts.rulesPath != "" {
		cfg.Sync.RulesPath = opts.rulesPath
	}
	rules, err := provider.LoadRulesFile(cfg.Sync.RulesPath)
	if err != nil {
		return err
	}

	// ── 3. Stores ────────────────────────────────────────────────────────
	startupCtx, startupCancel := context.WithTimeout(parent, 30*time.Second)
	defer startupCancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return err
	}

	tx := pgstore.NewTxManager(pool)
	contents := content.NewPostgresRepository(pool, tx)
	providers := provider.NewPostgresRepository(pool)

	// SIGINT / SIGTERM stop dispatch; in-flight writes still complete.
	context, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 4. Reclassification ──────────────────────────────────────────────
	if opts.reclassify {
		result, err := provider.NewReclassifier(providers, tx, rules, log).Reclassify(context)
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	}

	// ── 5. Sync ──────────────────────────────────────────────────────────
	orchestrator := pipeline.NewOrchestrator(
		catalog.FromConfig(cfg.Catalog, log),
		contents,
		rules,
		pipeline.NewCoordinator(tx, contents, providers, nil, log),
		pipeline.NewGate(cfg.Sync.StalenessWindow, nil),
		pipeline.Config{Languages: cfg.Sync.Languages, TranslationConcurrency: cfg.Sync.TranslationConcurrency},
		log,
	)

	summary, err := orchestrator.Sync(context, pipeline.Request{
		Kind:          opts.kind,
		TargetCount:   opts.target,
		ClearExisting: opts.clear,
		BatchSize:     opts.batch,
	})
	if err != nil {
		return err
	}

	if err := pipeline.NewRedisRecorder(rdb).Record(context, summary); err != nil {
		log.Warn("sync_summary_record_failed", slog.Any("error", err))
	}

	if err := writeJSON(out, summary); err != nil {
		return err
	}
	if summary.Canceled {
		return errCanceled
	}
	return nil
}

func writeJSON(out io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}
