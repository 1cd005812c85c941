// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog talks to the external movie and series catalog.

[Fetcher] owns resilience: pacing, per-attempt timeouts, retries on network
failure and a circuit breaker. [Client] owns the API surface: URLs, the
credential and response decoding.
*/
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/cinesync/internal/content"
)

const apiKeyParam = "api_key"

// Doer performs a resilient GET. [*Fetcher] implements it.
type Doer interface {
	Fetch(context context.Context, url string) (*Response, error)
}

// Client is a typed catalog API client.
type Client struct {
	fetcher Doer
	baseURL string
	apiKey  string
}

// NewClient creates a new Client. apiKey may be empty and supplied later
// through [Client.WithAPIKey].
func NewClient(fetcher Doer, baseURL, apiKey string) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// WithAPIKey returns a copy bound to another credential. The fetcher, and
// therefore the pacing limiter, is shared.
func (client *Client) WithAPIKey(apiKey string) *Client {
	clone := *client
	clone.apiKey = apiKey
	return &clone
}

// HasCredential reports whether a non-blank credential is configured.
func (client *Client) HasCredential() bool {
	return strings.TrimSpace(client.apiKey) != ""
}

// # Endpoints

// VerifyCredential checks the credential against the configuration endpoint.
func (client *Client) VerifyCredential(context context.Context) error {
	if !client.HasCredential() {
		return ErrMissingCredential
	}

	response, err := client.fetcher.Fetch(context, client.endpoint("/configuration", nil))
	if err != nil {
		return err
	}
	if response.StatusCode == http.StatusUnauthorized {
		return ErrCredentialRejected
	}
	return response.Err()
}

// Trending returns one page of the weekly trending listing of kind.
func (client *Client) Trending(context context.Context, kind content.Kind, page int) (*TrendingPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var listing TrendingPage
	if err := client.get(context, fmt.Sprintf("/trending/%s/week", segment(kind)), params, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Details returns the detail document of one item. An empty language asks
// for the catalog's default rendition.
func (client *Client) Details(context context.Context, kind content.Kind, id int64, language string) (*Details, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}

	var details Details
	if err := client.get(context, fmt.Sprintf("/%s/%d", segment(kind), id), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// WatchProviders returns the distribution feed of one item.
func (client *Client) WatchProviders(context context.Context, kind content.Kind, id int64) (*WatchProviders, error) {
	var providers WatchProviders
	if err := client.get(context, fmt.Sprintf("/%s/%d/watch/providers", segment(kind), id), nil, &providers); err != nil {
		return nil, err
	}
	return &providers, nil
}

// Certifications returns the age rating per country code. Movies read
// release dates, series read content ratings; blank ratings are dropped.
func (client *Client) Certifications(context context.Context, kind content.Kind, id int64) (map[string]string, error) {
	certifications := make(map[string]string)

	if kind == content.KindSeries {
		var ratings contentRatings
		if err := client.get(context, fmt.Sprintf("/tv/%d/content_ratings", id), nil, &ratings); err != nil {
			return nil, err
		}
		for _, result := range ratings.Results {
			if rating := strings.TrimSpace(result.Rating); rating != "" && result.Country != "" {
				certifications[result.Country] = rating
			}
		}
		return certifications, nil
	}

	var releases releaseDates
	if err := client.get(context, fmt.Sprintf("/movie/%d/release_dates", id), nil, &releases); err != nil {
		return nil, err
	}
	for _, result := range releases.Results {
		for _, release := range result.ReleaseDates {
			if rating := strings.TrimSpace(release.Certification); rating != "" && result.Country != "" {
				certifications[result.Country] = rating
				break
			}
		}
	}
	return certifications, nil
}

// # Internals

func (client *Client) get(context context.Context, path string, params url.Values, target any) error {
	if !client.HasCredential() {
		return ErrMissingCredential
	}

	response, err := client.fetcher.Fetch(context, client.endpoint(path, params))
	if err != nil {
		return err
	}
	return response.Decode(target)
}

func (client *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set(apiKeyParam, client.apiKey)
	return client.baseURL + path + "?" + params.Encode()
}

// segment maps a kind onto the catalog's path segment.
func segment(kind content.Kind) string {
	if kind == content.KindSeries {
		return "tv"
	}
	return "movie"
}

// IsCredentialError reports whether err is fatal for a whole run.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrCredentialRejected)
}
