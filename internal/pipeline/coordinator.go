// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/provider"
)

// PersistRequest is everything one item contributes to the store.
type PersistRequest struct {
	Item       *content.Item
	Classified provider.Classified

	// Refreshed lists the categories fetched in this run; only these get
	// their timestamp advanced.
	Refreshed []Category
}

// PersistResult reports what the write did.
type PersistResult struct {
	Item      *content.Item
	Outcome   content.SaveOutcome
	Providers provider.UpsertCounts
}

// Coordinator writes an item, its providers and its links atomically.
type Coordinator struct {
	tx        provider.Transactor
	contents  content.Repository
	providers provider.Repository
	now       func() time.Time
	logger    *slog.Logger
}

// NewCoordinator creates a new Coordinator. A nil clock uses time.Now.
func NewCoordinator(tx provider.Transactor, contents content.Repository, providers provider.Repository, now func() time.Time, logger *slog.Logger) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{tx: tx, contents: contents, providers: providers, now: now, logger: logger}
}

/*
Persist merges the item into the store and upserts its providers and links.

Description: Providers are written before the links that reference them. The
whole request commits or rolls back as one unit, so a failure leaves the
previous record intact.

Parameters:
  - context: context.Context
  - request: PersistRequest

Returns:
  - *PersistResult: merged item, content outcome and provider counts
  - error: repository failure; unique violations surface as PERSISTENCE_CONFLICT
*/
func (coordinator *Coordinator) Persist(ctx context.Context, request PersistRequest) (*PersistResult, error) {
	item := *request.Item
	now := coordinator.now().UTC()

	for _, category := range request.Refreshed {
		switch category {
		case CategoryProviders:
			item.ProvidersUpdatedAt = &now
		case CategoryRatings:
			item.RatingsUpdatedAt = &now
		}
	}

	result := &PersistResult{}
	err := coordinator.tx.RunInTx(ctx, func(txContext context.Context) error {
		saved, outcome, err := coordinator.contents.Save(txContext, &item)
		if err != nil {
			return err
		}
		result.Item, result.Outcome = saved, outcome

		if len(request.Classified.Providers) > 0 {
			counts, err := coordinator.providers.UpsertProviders(txContext, request.Classified.Providers)
			if err != nil {
				return err
			}
			result.Providers = counts
		}

		if len(request.Classified.Links) > 0 {
			return coordinator.providers.UpsertLinks(txContext, request.Classified.Links)
		}
		return nil
	})
	if err != nil {
		if apperr.HasCode(err, apperr.CodePersistenceConflict) {
			coordinator.logger.ErrorContext(ctx, "persistence_conflict",
				slog.String("kind", string(item.Kind)),
				slog.Int64("content_id", item.ID),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	return result, nil
}
