// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pipeline drives the synchronization of trending catalog items into
the local store.

A sync request verifies the catalog credential, optionally clears the stored
items of the requested kinds and then walks the trending listing. Each item
goes through a fixed sequence of stages:

  - details: original-language document
  - translations: per-language fan-out merged into translation maps
  - providers: distribution and network feeds, when stale
  - ratings: per-country certifications, when stale
  - persist: one transaction for the item, its providers and links

A failure is scoped to the item and stage that produced it and never aborts
the run. Provider and rating failures still persist the item without advancing
the category timestamp.
*/
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/platform/constants"
	"github.com/taibuivan/cinesync/internal/platform/ctxutil"
	"github.com/taibuivan/cinesync/internal/platform/metrics"
	"github.com/taibuivan/cinesync/internal/platform/validate"
	"github.com/taibuivan/cinesync/internal/provider"
	"github.com/taibuivan/cinesync/pkg/uuid"
)

// # Request

// KindBoth requests movies then series.
const KindBoth = "both"

// Request is one sync invocation.
type Request struct {
	Kind          string `json:"contentKind"`
	TargetCount   int    `json:"targetCount"`
	ClearExisting bool   `json:"clearExisting"`
	BatchSize     int    `json:"batchSize"`

	// APIKey overrides the configured catalog credential when set.
	APIKey string `json:"-"`
}

// Kinds expands the requested kind into the ordered list of passes.
func (request Request) Kinds() []content.Kind {
	if request.Kind == KindBoth {
		return []content.Kind{content.KindMovie, content.KindSeries}
	}
	return []content.Kind{content.Kind(request.Kind)}
}

// Validate checks the kind and the numeric bounds.
func (request Request) Validate() error {
	validator := &validate.Validator{}
	validator.OneOf("contentKind", request.Kind, append(content.KindNames(), KindBoth)...)
	validator.Range("targetCount", request.TargetCount, 1, constants.MaxTargetCount)
	validator.Range("batchSize", request.BatchSize, 1, constants.MaxBatchSize)
	return validator.Err()
}

// Options tune a single kind's pass.
type Options struct {
	BatchSize int
}

// # Orchestrator

// Config carries the pipeline settings that do not change per request.
type Config struct {
	Languages              []string
	TranslationConcurrency int
}

// Orchestrator runs sync requests.
type Orchestrator struct {
	client      *catalog.Client
	contents    content.Repository
	rules       *provider.RuleSet
	coordinator *Coordinator
	gate        *Gate
	config      Config
	logger      *slog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(client *catalog.Client, contents content.Repository, rules *provider.RuleSet, coordinator *Coordinator, gate *Gate, config Config, logger *slog.Logger) *Orchestrator {
	config.Languages = NormalizeLanguages(config.Languages)
	return &Orchestrator{
		client:      client,
		contents:    contents,
		rules:       rules,
		coordinator: coordinator,
		gate:        gate,
		config:      config,
		logger:      logger,
	}
}

// withAPIKey returns a shallow copy bound to the given credential.
func (orchestrator *Orchestrator) withAPIKey(apiKey string) *Orchestrator {
	if apiKey == "" {
		return orchestrator
	}
	bound := *orchestrator
	bound.client = orchestrator.client.WithAPIKey(apiKey)
	return &bound
}

/*
Sync executes one request over the requested kinds.

Description: The credential is verified before anything else, so a missing or
rejected key issues no listing call and deletes nothing. With ClearExisting,
every requested kind is cleared before the first pass; a kind whose clear
fails is reported as a clear failure and skipped while the others still run.
Cancellation stops dispatch and returns the partial summary with Canceled set.

Parameters:
  - context: context.Context
  - request: Request

Returns:
  - *Summary: aggregated counters and scoped failures
  - error: validation or credential failure
*/
func (orchestrator *Orchestrator) Sync(context context.Context, request Request) (*Summary, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	runner := orchestrator.withAPIKey(request.APIKey)
	if err := runner.client.VerifyCredential(context); err != nil {
		if catalog.IsCredentialError(err) {
			return nil, err
		}
		return nil, apperr.Upstream("Catalog credential check failed", err)
	}

	runID := uuid.New()
	context = ctxutil.WithRunID(context, runID)
	logger := orchestrator.logger.With(slog.String("run_id", runID))

	started := time.Now()
	summary := newSummary(runID)

	logger.InfoContext(context, "sync_started",
		slog.String("kind", request.Kind),
		slog.Int("target_count", request.TargetCount),
		slog.Int("batch_size", request.BatchSize),
		slog.Bool("clear_existing", request.ClearExisting),
	)

	kinds := request.Kinds()
	uncleared := map[content.Kind]*Run{}
	if request.ClearExisting {
		for _, kind := range kinds {
			deleted, err := orchestrator.contents.DeleteAll(context, kind)
			if err != nil {
				logger.ErrorContext(context, "sync_clear_failed", slog.String("kind", string(kind)), slog.Any("error", err))
				skipped := newRun(kind)
				skipped.fail(Failure{Kind: kind, Stage: StageClear, Error: err.Error()})
				uncleared[kind] = skipped
				continue
			}
			logger.InfoContext(context, "sync_cleared", slog.String("kind", string(kind)), slog.Int64("deleted", deleted))
		}
	}

	for _, kind := range kinds {
		if skipped, found := uncleared[kind]; found {
			summary.add(skipped)
			continue
		}
		if context.Err() != nil {
			summary.Canceled = true
			break
		}

		summary.add(runner.Run(context, kind, request.TargetCount, Options{BatchSize: request.BatchSize}))
	}

	summary.DurationMs = time.Since(started).Milliseconds()
	summary.Timestamp = time.Now().UTC()

	logger.InfoContext(context, "sync_finished",
		slog.Int("imported_movies", summary.Imported.Movies),
		slog.Int("imported_series", summary.Imported.Series),
		slog.Int("failures", len(summary.Failures)),
		slog.Bool("canceled", summary.Canceled),
		slog.Int64("duration_ms", summary.DurationMs),
	)

	return summary, nil
}

/*
Run imports up to targetCount trending items of one kind.

Description: The listing is read in pages of constants.CatalogPageSize; the
number of pages is derived from the target. At most BatchSize items are in
flight. Items are reserved against the target so that imported plus in-flight
never exceeds it, and a failed item frees its slot for the next listed one.
Callers are expected to have verified the credential.

Parameters:
  - context: context.Context
  - kind: content.Kind
  - targetCount: int
  - options: Options

Returns:
  - *Run: counters of the pass
*/
func (orchestrator *Orchestrator) Run(context context.Context, kind content.Kind, targetCount int, options Options) *Run {
	run := newRun(kind)
	started := time.Now()
	defer func() {
		run.Duration = time.Since(started)
		metrics.SyncRunDuration.WithLabelValues(string(kind)).Observe(run.Duration.Seconds())
	}()

	group := errgroup.Group{}
	group.SetLimit(max(options.BatchSize, 1))

	aggregator := NewAggregator(orchestrator.client, orchestrator.config.TranslationConcurrency, orchestrator.logger)
	pages := (targetCount + constants.CatalogPageSize - 1) / constants.CatalogPageSize
	seen := make(map[int64]struct{})

	dispatch := func(id int64) bool {
		if !run.reserve(targetCount) {
			// Slots may free up when in-flight items fail.
			_ = group.Wait()
			if !run.reserve(targetCount) {
				return false
			}
		}

		group.Go(func() error {
			defer run.release()
			orchestrator.process(context, run, aggregator, kind, id)
			return nil
		})
		return true
	}

listing:
	for page := 1; page <= pages; page++ {
		if context.Err() != nil {
			run.cancel()
			break
		}

		trending, err := orchestrator.client.Trending(context, kind, page)
		if err != nil {
			if context.Err() != nil {
				run.cancel()
				break
			}
			orchestrator.logger.WarnContext(context, "sync_listing_failed",
				slog.String("kind", string(kind)), slog.Int("page", page), slog.Any("error", err))
			run.fail(Failure{Kind: kind, Stage: StageListing, Error: fmt.Sprintf("page %d: %v", page, err)})
			continue
		}

		for _, entry := range trending.Results {
			if context.Err() != nil {
				run.cancel()
				break listing
			}
			if _, duplicate := seen[entry.ID]; duplicate {
				continue
			}
			seen[entry.ID] = struct{}{}

			if !dispatch(entry.ID) {
				break listing
			}
		}

		if trending.TotalPages > 0 && page >= trending.TotalPages {
			break
		}
	}

	_ = group.Wait()
	if context.Err() != nil {
		run.cancel()
	}

	return run
}

// process runs every stage of one item. A canceled context abandons the
// item silently unless it already reached persistence.
func (orchestrator *Orchestrator) process(ctx context.Context, run *Run, aggregator *Aggregator, kind content.Kind, id int64) {
	logger := orchestrator.logger.With(slog.String("kind", string(kind)), slog.Int64("content_id", id))

	fail := func(stage Stage, err error) {
		logger.WarnContext(ctx, "sync_stage_failed", slog.String("stage", string(stage)), slog.Any("error", err))
		run.fail(Failure{Kind: kind, ContentID: id, Stage: stage, Error: err.Error()})
	}
	// Errors after cancellation are a consequence of it, not item failures.
	canceled := func() bool { return ctx.Err() != nil }

	// 1. Original-language details
	details, err := orchestrator.client.Details(ctx, kind, id, "")
	if err != nil {
		if !canceled() {
			fail(StageDetails, err)
		}
		return
	}

	// 2. Translations
	bundle, languageFailures := aggregator.Translate(ctx, kind, id, orchestrator.config.Languages)
	if ctx.Err() != nil {
		return
	}
	for _, failure := range languageFailures {
		run.fail(Failure{Kind: kind, ContentID: id, Stage: StageTranslations, Language: failure.Language, Error: failure.Err.Error()})
	}

	item := &content.Item{
		ID:                   id,
		Kind:                 kind,
		OriginalTitle:        details.Original(),
		OriginalLanguage:     details.OriginalLanguage,
		TitleTranslations:    bundle.Title,
		OverviewTranslations: bundle.Overview,
		TaglineTranslations:  bundle.Tagline,
		Popularity:           details.Popularity,
		VoteAverage:          details.VoteAverage,
		VoteCount:            details.VoteCount,
		Status:               details.Status,
		ReleaseDate:          details.Released(),
		PosterPath:           details.PosterPath,
		BackdropPath:         details.BackdropPath,
	}
	item.Slug = content.SlugFor(id, item.OriginalTitle, bundle.Title[constants.BaselineLanguage])

	stored, err := orchestrator.contents.Find(ctx, kind, id)
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		if !canceled() {
			fail(StagePersist, err)
		}
		return
	}

	request := PersistRequest{Item: item}

	// 3. Providers
	if orchestrator.gate.Due(stored, CategoryProviders) {
		feed, err := orchestrator.client.WatchProviders(ctx, kind, id)
		switch {
		case err == nil:
			request.Classified = provider.FromWatchProviders(orchestrator.rules, kind, id, feed)
			if kind == content.KindSeries {
				request.Classified = request.Classified.Append(provider.FromNetworks(orchestrator.rules, kind, id, details.Networks))
			}
			request.Refreshed = append(request.Refreshed, CategoryProviders)
		case canceled():
			return
		default:
			fail(StageProviders, err)
		}
	}

	// 4. Ratings
	if orchestrator.gate.Due(stored, CategoryRatings) {
		certifications, err := orchestrator.client.Certifications(ctx, kind, id)
		switch {
		case err == nil:
			item.Certifications = certifications
			request.Refreshed = append(request.Refreshed, CategoryRatings)
		case canceled():
			return
		default:
			fail(StageRatings, err)
		}
	}

	// 5. Persist; once reached, the write completes even if the run is canceled.
	result, err := orchestrator.coordinator.Persist(context.WithoutCancel(ctx), request)
	if err != nil {
		fail(StagePersist, err)
		return
	}

	run.persisted(result)
	logger.DebugContext(ctx, "sync_item_persisted", slog.String("outcome", string(result.Outcome)))
}
