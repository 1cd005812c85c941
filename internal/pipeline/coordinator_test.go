// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/pipeline"
	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/platform/logging"
	"github.com/taibuivan/cinesync/internal/provider"
)

// conflictingProviders fails every provider upsert with a unique violation.
type conflictingProviders struct {
	*memoryProviders
}

func (conflictingProviders) UpsertProviders(context.Context, []provider.Provider) (provider.UpsertCounts, error) {
	return provider.UpsertCounts{}, apperr.PersistenceConflict(errors.New("duplicate key"))
}

func TestCoordinator_StampsRefreshedCategories(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	contents, providers := newMemoryContents(), newMemoryProviders()
	coordinator := pipeline.NewCoordinator(passthroughTx{}, contents, providers, func() time.Time { return now }, logging.Discard())

	result, err := coordinator.Persist(context.Background(), pipeline.PersistRequest{
		Item: &content.Item{ID: 603, Kind: content.KindMovie, OriginalTitle: "The Matrix"},
		Classified: provider.Classified{
			Providers: []provider.Provider{{ID: "watch:8", Name: "Netflix", Type: provider.TypeStreaming, SourceType: provider.SourceWatchProvider, Active: true, Regions: []string{"US"}}},
			Links:     []provider.Link{{ContentID: 603, ContentKind: content.KindMovie, ProviderID: "watch:8", Country: "US", Monetization: provider.MonetizationFlatrate}},
		},
		Refreshed: []pipeline.Category{pipeline.CategoryProviders},
	})

	require.NoError(t, err)
	assert.Equal(t, content.OutcomeCreated, result.Outcome)
	assert.Equal(t, provider.UpsertCounts{Created: 1}, result.Providers)
	require.NotNil(t, result.Item.ProvidersUpdatedAt)
	assert.True(t, result.Item.ProvidersUpdatedAt.Equal(now))
	assert.Nil(t, result.Item.RatingsUpdatedAt)
	assert.Equal(t, "603-the-matrix", result.Item.Slug)
	assert.Equal(t, 1, providers.linkCount())
}

func TestCoordinator_ConflictIsReturned(t *testing.T) {
	contents := newMemoryContents()
	coordinator := pipeline.NewCoordinator(passthroughTx{}, contents, conflictingProviders{newMemoryProviders()}, nil, logging.Discard())

	_, err := coordinator.Persist(context.Background(), pipeline.PersistRequest{
		Item:       &content.Item{ID: 603, Kind: content.KindMovie, OriginalTitle: "The Matrix"},
		Classified: provider.Classified{Providers: []provider.Provider{{ID: "watch:8", Name: "Netflix"}}},
	})

	assert.True(t, apperr.HasCode(err, apperr.CodePersistenceConflict))
}
