// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds table and column names of the media schema so that
// SQL is assembled from one source of truth.
package schema

import "github.com/taibuivan/cinesync/internal/platform/constants"

// MediaContentTable represents 'media.movie' and 'media.series', which share
// one column layout.
type MediaContentTable struct {
	Table                string
	ID                   string
	OriginalTitle        string
	OriginalLanguage     string
	Slug                 string
	TitleTranslations    string
	OverviewTranslations string
	TaglineTranslations  string
	Certifications       string
	Popularity           string
	VoteAverage          string
	VoteCount            string
	Status               string
	ReleaseDate          string
	PosterPath           string
	BackdropPath         string
	ProvidersUpdatedAt   string
	RatingsUpdatedAt     string
	CreatedAt            string
	UpdatedAt            string
}

func newMediaContentTable(table string) MediaContentTable {
	return MediaContentTable{
		Table:                table,
		ID:                   "id",
		OriginalTitle:        "originaltitle",
		OriginalLanguage:     "originallanguage",
		Slug:                 "slug",
		TitleTranslations:    "titletranslations",
		OverviewTranslations: "overviewtranslations",
		TaglineTranslations:  "taglinetranslations",
		Certifications:       "certifications",
		Popularity:           "popularity",
		VoteAverage:          "voteaverage",
		VoteCount:            "votecount",
		Status:               "status",
		ReleaseDate:          "releasedate",
		PosterPath:           "posterpath",
		BackdropPath:         "backdroppath",
		ProvidersUpdatedAt:   "providersupdatedat",
		RatingsUpdatedAt:     "ratingsupdatedat",
		CreatedAt:            "createdat",
		UpdatedAt:            "updatedat",
	}
}

// MediaMovie is the schema definition for media.movie
var MediaMovie = newMediaContentTable(constants.SchemaMedia + ".movie")

// MediaSeries is the schema definition for media.series
var MediaSeries = newMediaContentTable(constants.SchemaMedia + ".series")

// Columns lists every column except the audit timestamps, in scan order.
func (t MediaContentTable) Columns() []string {
	return []string{
		t.ID, t.OriginalTitle, t.OriginalLanguage, t.Slug,
		t.TitleTranslations, t.OverviewTranslations, t.TaglineTranslations, t.Certifications,
		t.Popularity, t.VoteAverage, t.VoteCount, t.Status, t.ReleaseDate,
		t.PosterPath, t.BackdropPath, t.ProvidersUpdatedAt, t.RatingsUpdatedAt,
	}
}
