// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/metrics"
	"github.com/taibuivan/cinesync/internal/provider"
)

// # Item Stages

// Stage names the step at which an item failed.
type Stage string

const (
	StageClear        Stage = "clear"
	StageListing      Stage = "listing"
	StageDetails      Stage = "details"
	StageTranslations Stage = "translations"
	StageProviders    Stage = "providers"
	StageRatings      Stage = "ratings"
	StagePersist      Stage = "persist"
)

// Failure is one scoped failure, precise enough to replay the item.
type Failure struct {
	Kind      content.Kind `json:"kind"`
	ContentID int64        `json:"contentId,omitempty"`
	Stage     Stage        `json:"stage"`
	Language  string       `json:"language,omitempty"`
	Error     string       `json:"error"`
}

// ContentCounts splits persisted items by what the write did.
type ContentCounts struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

func (counts *ContentCounts) add(outcome content.SaveOutcome) {
	switch outcome {
	case content.OutcomeCreated:
		counts.Created++
	case content.OutcomeUpdated:
		counts.Updated++
	case content.OutcomeUnchanged:
		counts.Unchanged++
	}
}

// # Run

// Run holds the counters of one kind's pass. It is safe for concurrent use
// by item workers.
type Run struct {
	Kind              content.Kind
	Imported          int
	Errors            int
	ProviderErrors    int
	RatingErrors      int
	TranslationErrors int
	Content           ContentCounts
	Providers         provider.UpsertCounts
	Failures          []Failure
	Canceled          bool
	Duration          time.Duration

	mu       sync.Mutex
	inFlight int
}

func newRun(kind content.Kind) *Run {
	return &Run{Kind: kind, Failures: []Failure{}}
}

// reserve claims a slot while imported plus in-flight items stay below target.
func (run *Run) reserve(target int) bool {
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.Imported+run.inFlight >= target {
		return false
	}
	run.inFlight++
	return true
}

func (run *Run) release() {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.inFlight--
}

func (run *Run) persisted(result *PersistResult) {
	run.mu.Lock()
	defer run.mu.Unlock()

	run.Imported++
	run.Content.add(result.Outcome)
	run.Providers.Add(result.Providers)
	metrics.SyncItems.WithLabelValues(string(run.Kind), string(result.Outcome)).Inc()
}

// fail records a failure. Item-level stages count against the kind;
// provider, rating and translation failures have their own counters.
func (run *Run) fail(failure Failure) {
	run.mu.Lock()
	defer run.mu.Unlock()

	switch failure.Stage {
	case StageProviders:
		run.ProviderErrors++
	case StageRatings:
		run.RatingErrors++
	case StageTranslations:
		run.TranslationErrors++
	case StageClear:
		run.Errors++
	default:
		run.Errors++
		metrics.SyncItems.WithLabelValues(string(run.Kind), "failed").Inc()
	}

	run.Failures = append(run.Failures, failure)
	metrics.SyncStageFailures.WithLabelValues(string(failure.Stage)).Inc()
}

func (run *Run) cancel() {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.Canceled = true
}

// # Summary

// ImportedCounts is the number of persisted items per kind.
type ImportedCounts struct {
	Movies int `json:"movies"`
	Series int `json:"series"`
}

// ErrorCounts is the number of failures per kind and per scoped category.
type ErrorCounts struct {
	Movies       int `json:"movies"`
	Series       int `json:"series"`
	Providers    int `json:"providers"`
	Ratings      int `json:"ratings"`
	Translations int `json:"translations"`
}

// Summary is the result of a sync invocation over one or both kinds.
type Summary struct {
	RunID      string                `json:"runId"`
	Imported   ImportedCounts        `json:"imported"`
	Errors     ErrorCounts           `json:"errors"`
	Providers  provider.UpsertCounts `json:"providers"`
	Content    ContentCounts         `json:"content"`
	Failures   []Failure             `json:"failures"`
	Canceled   bool                  `json:"canceled"`
	DurationMs int64                 `json:"durationMs"`
	Timestamp  time.Time             `json:"timestamp"`
}

func newSummary(runID string) *Summary {
	return &Summary{RunID: runID, Failures: []Failure{}}
}

func (summary *Summary) add(run *Run) {
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.Kind == content.KindMovie {
		summary.Imported.Movies += run.Imported
		summary.Errors.Movies += run.Errors
	} else {
		summary.Imported.Series += run.Imported
		summary.Errors.Series += run.Errors
	}

	summary.Errors.Providers += run.ProviderErrors
	summary.Errors.Ratings += run.RatingErrors
	summary.Errors.Translations += run.TranslationErrors

	summary.Providers.Add(run.Providers)
	summary.Content.Created += run.Content.Created
	summary.Content.Updated += run.Content.Updated
	summary.Content.Unchanged += run.Content.Unchanged

	summary.Failures = append(summary.Failures, slices.Clone(run.Failures)...)
	summary.Canceled = summary.Canceled || run.Canceled
}
