// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("catalog: circuit open")

	// ErrCredentialRejected is returned when the catalog answers 401 to the credential check.
	ErrCredentialRejected = errors.New("catalog: credential rejected")

	// ErrMissingCredential is returned when no credential was supplied at all.
	ErrMissingCredential = errors.New("catalog: credential missing")
)

// FetchExhausted reports a call that failed at the network level on every attempt.
type FetchExhausted struct {
	URL      string
	Attempts int
	Last     error
}

func (e *FetchExhausted) Error() string {
	return fmt.Sprintf("catalog: %s failed after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *FetchExhausted) Unwrap() error {
	return e.Last
}

// UpstreamHTTPError is a non-2xx catalog answer. It is never retried.
type UpstreamHTTPError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("catalog: %s returned HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var upstream *UpstreamHTTPError
	return errors.As(err, &upstream) && upstream.StatusCode == 404
}

// redact hides the credential so URLs can be logged and returned in errors.
func redact(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}

	query := parsed.Query()
	if query.Has(apiKeyParam) {
		query.Set(apiKeyParam, "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

// redactError strips the credential from the URL embedded in transport errors.
func redactError(err error) error {
	var urlError *url.Error
	if errors.As(err, &urlError) {
		urlError.URL = redact(urlError.URL)
	}
	return err
}
