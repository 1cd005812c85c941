// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/pkg/pointer"
)

func theMatrix() *content.Item {
	return &content.Item{
		ID:                   603,
		Kind:                 content.KindMovie,
		OriginalTitle:        "The Matrix",
		OriginalLanguage:     "en",
		TitleTranslations:    content.Translations{"en": "The Matrix", "tr": "Matrix"},
		OverviewTranslations: content.Translations{"en": "Set in the 22nd century."},
		TaglineTranslations:  content.Translations{},
		Certifications:       map[string]string{"US": "R"},
		Popularity:           81.2,
		VoteAverage:          8.2,
		VoteCount:            25000,
		Status:               "Released",
		ReleaseDate:          "1999-03-31",
	}
}

func TestMerge_New(t *testing.T) {
	merged, changed := content.Merge(nil, theMatrix())

	require.True(t, changed)
	assert.Equal(t, "603-the-matrix", merged.Slug)
	assert.NotNil(t, merged.TaglineTranslations)
}

func TestMerge_Idempotent(t *testing.T) {
	first, _ := content.Merge(nil, theMatrix())

	second, changed := content.Merge(first, theMatrix())

	assert.False(t, changed)
	assert.True(t, content.Equal(first, second))
}

func TestMerge_FieldGroups(t *testing.T) {
	stamped := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	stored, _ := content.Merge(nil, theMatrix())
	stored.ProvidersUpdatedAt = pointer.To(stamped)
	stored.Slug = "603-the-matrix"

	incoming := theMatrix()
	incoming.Popularity = 90
	incoming.TitleTranslations = content.Translations{"de": "Matrix", "tr": "  "}
	incoming.OverviewTranslations = nil
	incoming.Certifications = map[string]string{"DE": "16"}
	incoming.OriginalTitle = "The Matrix (Remastered)"

	merged, changed := content.Merge(stored, incoming)
	require.True(t, changed)

	t.Run("freshness overwrites", func(t *testing.T) {
		assert.InDelta(t, 90, merged.Popularity, 0.0001)
	})

	t.Run("translations merge key by key", func(t *testing.T) {
		assert.Equal(t, content.Translations{"en": "The Matrix", "tr": "Matrix", "de": "Matrix"}, merged.TitleTranslations)
		assert.Equal(t, stored.OverviewTranslations, merged.OverviewTranslations)
		assert.Equal(t, map[string]string{"US": "R", "DE": "16"}, merged.Certifications)
	})

	t.Run("valid slug is kept", func(t *testing.T) {
		assert.Equal(t, "603-the-matrix", merged.Slug)
	})

	t.Run("staleness not cleared", func(t *testing.T) {
		require.NotNil(t, merged.ProvidersUpdatedAt)
		assert.True(t, stamped.Equal(*merged.ProvidersUpdatedAt))
		assert.Nil(t, merged.RatingsUpdatedAt)
	})

	t.Run("stored untouched", func(t *testing.T) {
		assert.InDelta(t, 81.2, stored.Popularity, 0.0001)
		assert.NotContains(t, stored.TitleTranslations, "de")
	})
}

func TestMerge_RepairsInvalidSlug(t *testing.T) {
	stored, _ := content.Merge(nil, theMatrix())
	stored.Slug = "603"

	merged, changed := content.Merge(stored, theMatrix())

	assert.True(t, changed)
	assert.Equal(t, "603-the-matrix", merged.Slug)
}

func TestMerge_TimestampsOnlyAdvance(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	stored, _ := content.Merge(nil, theMatrix())
	stored.RatingsUpdatedAt = pointer.To(newer)

	incoming := theMatrix()
	incoming.RatingsUpdatedAt = pointer.To(older)
	merged, _ := content.Merge(stored, incoming)
	assert.True(t, newer.Equal(*merged.RatingsUpdatedAt))

	incoming.RatingsUpdatedAt = pointer.To(newer.Add(time.Hour))
	merged, changed := content.Merge(stored, incoming)
	assert.True(t, changed)
	assert.True(t, newer.Add(time.Hour).Equal(*merged.RatingsUpdatedAt))
}
