// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package content models the movie and series records produced by the sync pipeline.

# Field Groups

Every [Item] field belongs to exactly one merge group, and [Merge] applies one
policy per group:

  - Identity: ID and Kind, immutable.
  - Freshness: popularity, votes, status, dates, artwork; latest value wins.
  - Localized: translation maps and certifications; merged key by key.
  - Slug: kept once valid.
  - Staleness: per-category refresh timestamps; only advanced.
*/
package content

import (
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/cinesync/pkg/slice"
	"github.com/taibuivan/cinesync/pkg/slug"
)

// # Kinds

// Kind discriminates movies from series.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Kinds lists every supported kind in sync order.
var Kinds = []Kind{KindMovie, KindSeries}

// KindNames lists the kinds as strings, for validation messages.
func KindNames() []string {
	return slice.Map(Kinds, func(k Kind) string { return string(k) })
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMovie || k == KindSeries
}

// Plural is the label used in run summaries ("movies", "series").
func (k Kind) Plural() string {
	if k == KindMovie {
		return "movies"
	}
	return "series"
}

// # Domain Entity

// Translations maps a language code to a localized value.
// A missing key means no upstream translation exists.
type Translations map[string]string

// Item is a movie or series keyed by its external catalog id.
type Item struct {
	ID               int64  `json:"id"`
	Kind             Kind   `json:"kind"`
	OriginalTitle    string `json:"original_title"`
	OriginalLanguage string `json:"original_language"`
	Slug             string `json:"slug"`

	TitleTranslations    Translations `json:"title_translations"`
	OverviewTranslations Translations `json:"overview_translations"`
	TaglineTranslations  Translations `json:"tagline_translations"`

	// Certifications maps a country code to its age rating.
	Certifications map[string]string `json:"certifications"`

	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Status       string  `json:"status"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`

	ProvidersUpdatedAt *time.Time `json:"providers_updated_at"`
	RatingsUpdatedAt   *time.Time `json:"ratings_updated_at"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// # Slugs

// SlugFor derives the language-independent slug "<id>-<slug(title)>".
//
// The English title is consulted only when the original title has no ASCII
// rendering; when neither has one the bare id is returned, which [ValidSlug]
// rejects so a later run can repair it.
func SlugFor(id int64, originalTitle, englishTitle string) string {
	prefix := strconv.FormatInt(id, 10)

	suffix := slug.From(originalTitle)
	if suffix == "" {
		suffix = slug.From(englishTitle)
	}
	if suffix == "" {
		return prefix
	}

	return prefix + "-" + suffix
}

// ValidSlug reports whether s is "<id>-<readable suffix>".
func ValidSlug(id int64, s string) bool {
	suffix, found := strings.CutPrefix(s, strconv.FormatInt(id, 10)+"-")
	return found && slug.Valid(suffix)
}
