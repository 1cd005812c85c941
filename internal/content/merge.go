// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"maps"
	"strings"
	"time"
)

/*
Merge folds a freshly fetched item into the stored one.

Description: Applies the per-group policy documented on the package. The
stored item is never mutated; a new value is returned together with a flag
telling whether anything differs from stored. Merging the same incoming item
twice is a no-op the second time.

Parameters:
  - stored: *Item (nil when the item does not exist yet)
  - incoming: *Item (fresh upstream data)

Returns:
  - *Item: the merged record
  - bool: true if the merged record differs from stored
*/
func Merge(stored, incoming *Item) (*Item, bool) {
	if stored == nil {
		created := *incoming
		created.TitleTranslations = mergeTranslations(nil, incoming.TitleTranslations)
		created.OverviewTranslations = mergeTranslations(nil, incoming.OverviewTranslations)
		created.TaglineTranslations = mergeTranslations(nil, incoming.TaglineTranslations)
		created.Certifications = mergeTranslations(nil, incoming.Certifications)
		if !ValidSlug(created.ID, created.Slug) {
			created.Slug = SlugFor(created.ID, created.OriginalTitle, created.TitleTranslations["en"])
		}
		return &created, true
	}

	merged := *stored

	// Freshness: latest upstream value wins.
	merged.OriginalTitle = incoming.OriginalTitle
	merged.OriginalLanguage = incoming.OriginalLanguage
	merged.Popularity = incoming.Popularity
	merged.VoteAverage = incoming.VoteAverage
	merged.VoteCount = incoming.VoteCount
	merged.Status = incoming.Status
	merged.ReleaseDate = incoming.ReleaseDate
	merged.PosterPath = incoming.PosterPath
	merged.BackdropPath = incoming.BackdropPath

	// Localized: key by key.
	merged.TitleTranslations = mergeTranslations(stored.TitleTranslations, incoming.TitleTranslations)
	merged.OverviewTranslations = mergeTranslations(stored.OverviewTranslations, incoming.OverviewTranslations)
	merged.TaglineTranslations = mergeTranslations(stored.TaglineTranslations, incoming.TaglineTranslations)
	merged.Certifications = mergeTranslations(stored.Certifications, incoming.Certifications)

	// Slug: only repaired, never re-derived from translations.
	if !ValidSlug(merged.ID, merged.Slug) {
		merged.Slug = SlugFor(merged.ID, merged.OriginalTitle, merged.TitleTranslations["en"])
	}

	// Staleness: advanced only by a successful refresh.
	merged.ProvidersUpdatedAt = later(stored.ProvidersUpdatedAt, incoming.ProvidersUpdatedAt)
	merged.RatingsUpdatedAt = later(stored.RatingsUpdatedAt, incoming.RatingsUpdatedAt)

	return &merged, !Equal(stored, &merged)
}

// Equal compares every persisted field of two items.
func Equal(a, b *Item) bool {
	return a.ID == b.ID &&
		a.Kind == b.Kind &&
		a.OriginalTitle == b.OriginalTitle &&
		a.OriginalLanguage == b.OriginalLanguage &&
		a.Slug == b.Slug &&
		maps.Equal(a.TitleTranslations, b.TitleTranslations) &&
		maps.Equal(a.OverviewTranslations, b.OverviewTranslations) &&
		maps.Equal(a.TaglineTranslations, b.TaglineTranslations) &&
		maps.Equal(a.Certifications, b.Certifications) &&
		a.Popularity == b.Popularity &&
		a.VoteAverage == b.VoteAverage &&
		a.VoteCount == b.VoteCount &&
		a.Status == b.Status &&
		a.ReleaseDate == b.ReleaseDate &&
		a.PosterPath == b.PosterPath &&
		a.BackdropPath == b.BackdropPath &&
		sameInstant(a.ProvidersUpdatedAt, b.ProvidersUpdatedAt) &&
		sameInstant(a.RatingsUpdatedAt, b.RatingsUpdatedAt)
}

// mergeTranslations overlays incoming onto stored, ignoring blank values.
// The result is never nil so it always persists as an empty JSON object.
func mergeTranslations(stored, incoming map[string]string) Translations {
	merged := make(Translations, len(stored)+len(incoming))
	for language, value := range stored {
		if strings.TrimSpace(value) != "" {
			merged[language] = value
		}
	}
	for language, value := range incoming {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			merged[language] = trimmed
		}
	}
	return merged
}

func later(stored, incoming *time.Time) *time.Time {
	if incoming == nil {
		return stored
	}
	if stored != nil && !incoming.After(*stored) {
		return stored
	}
	return incoming
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
