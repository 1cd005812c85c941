// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

// Wire types of the TMDB v3 compatible catalog API.

// TrendingPage is one page of the weekly trending listing.
type TrendingPage struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Results    []TrendingEntry `json:"results"`
}

// TrendingEntry identifies one listed movie or series.
type TrendingEntry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

// Details is the per-language detail document. Movies fill Title and
// ReleaseDate; series fill Name, FirstAirDate and Networks.
type Details struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Name             string    `json:"name"`
	OriginalTitle    string    `json:"original_title"`
	OriginalName     string    `json:"original_name"`
	OriginalLanguage string    `json:"original_language"`
	Overview         string    `json:"overview"`
	Tagline          string    `json:"tagline"`
	Popularity       float64   `json:"popularity"`
	VoteAverage      float64   `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	Status           string    `json:"status"`
	ReleaseDate      string    `json:"release_date"`
	FirstAirDate     string    `json:"first_air_date"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	Networks         []Network `json:"networks"`
}

// DisplayTitle is the localized title or series name.
func (details *Details) DisplayTitle() string {
	if details.Title != "" {
		return details.Title
	}
	return details.Name
}

// Original is the original-language title or series name.
func (details *Details) Original() string {
	if details.OriginalTitle != "" {
		return details.OriginalTitle
	}
	return details.OriginalName
}

// Released is the release date for movies or the first air date for series.
func (details *Details) Released() string {
	if details.ReleaseDate != "" {
		return details.ReleaseDate
	}
	return details.FirstAirDate
}

// Network is a production or broadcast network of a series.
type Network struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	OriginCountry string `json:"origin_country"`
}

// WatchProviders is the distribution feed, keyed by country code.
type WatchProviders struct {
	ID      int64                    `json:"id"`
	Results map[string]CountryOffers `json:"results"`
}

// CountryOffers groups offers of one country by monetization.
type CountryOffers struct {
	Link     string          `json:"link"`
	Flatrate []WatchProvider `json:"flatrate"`
	Buy      []WatchProvider `json:"buy"`
	Rent     []WatchProvider `json:"rent"`
	Ads      []WatchProvider `json:"ads"`
	Free     []WatchProvider `json:"free"`
}

// WatchProvider is one platform entry of the distribution feed.
type WatchProvider struct {
	ProviderID      int64  `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

type releaseDates struct {
	Results []struct {
		Country      string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
			Type          int    `json:"type"`
		} `json:"release_dates"`
	} `json:"results"`
}

type contentRatings struct {
	Results []struct {
		Country string `json:"iso_3166_1"`
		Rating  string `json:"rating"`
	} `json:"results"`
}
