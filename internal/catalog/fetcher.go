// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/taibuivan/cinesync/internal/platform/constants"
	"github.com/taibuivan/cinesync/internal/platform/metrics"
)

// # Response

// Response is a fully read catalog answer. Any status code is a Response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// Err converts a non-2xx status into an [*UpstreamHTTPError].
func (response *Response) Err() error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	return &UpstreamHTTPError{StatusCode: response.StatusCode, URL: redact(response.URL)}
}

// Decode unmarshals a 2xx body into target.
func (response *Response) Decode(target any) error {
	if err := response.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(response.Body, target); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", redact(response.URL), err)
	}
	return nil
}

// # Fetcher

// Pacer spaces outbound calls. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(context context.Context) error
}

// FetcherConfig tunes retries, timeouts and the breaker.
type FetcherConfig struct {
	Timeout         time.Duration
	MaxRetries      int
	BackoffInitial  time.Duration
	PacingInterval  time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// FetcherOption customizes a [Fetcher].
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(fetcher *Fetcher) { fetcher.client = client }
}

// WithPacer replaces the limiter built from PacingInterval.
func WithPacer(pacer Pacer) FetcherOption {
	return func(fetcher *Fetcher) { fetcher.pacer = pacer }
}

// WithSleep replaces the backoff wait, so tests can record delays.
func WithSleep(sleep func(context.Context, time.Duration) error) FetcherOption {
	return func(fetcher *Fetcher) { fetcher.sleep = sleep }
}

// WithLogger sets the logger used for retry and breaker events.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(fetcher *Fetcher) { fetcher.logger = logger }
}

/*
Fetcher performs catalog GETs with pacing, retries and a circuit breaker.

One Fetcher is shared by every caller of a run so that all calls pass through
the same pacing limiter. It is safe for concurrent use.
*/
type Fetcher struct {
	client     *http.Client
	pacer      Pacer
	timeout    time.Duration
	maxRetries int
	initial    time.Duration
	sleep      func(context.Context, time.Duration) error
	breaker    *gobreaker.CircuitBreaker[*Response]
	logger     *slog.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(config FetcherConfig, options ...FetcherOption) *Fetcher {
	fetcher := &Fetcher{
		client:     &http.Client{},
		pacer:      newPacer(config.PacingInterval),
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		initial:    config.BackoffInitial,
		sleep:      sleepContext,
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(fetcher)
	}

	const breakerName = "catalog"
	metrics.CatalogBreakerState.WithLabelValues(breakerName).Set(0)

	fetcher.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return config.BreakerFailures > 0 && counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fetcher.logger.Warn("catalog_breaker_state_changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CatalogBreakerState.WithLabelValues(name).Set(breakerGauge(to))
		},
		// Only exhausted network retries count against the breaker.
		IsSuccessful: func(err error) bool {
			var exhausted *FetchExhausted
			return !errors.As(err, &exhausted)
		},
	})

	return fetcher
}

func newPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

/*
Fetch issues a GET and returns the fully read response.

Description: Every attempt waits on the pacer and runs under its own timeout.
Transport failures, attempt timeouts and body read failures are retried with
exponential backoff; any HTTP answer, whatever its status, is returned as is.
Cancellation of the caller's context is returned immediately.

Parameters:
  - context: context.Context
  - url: string (absolute URL, credential included)

Returns:
  - *Response: the answer, including non-2xx ones
  - error: *FetchExhausted, ErrCircuitOpen or the context error
*/
func (fetcher *Fetcher) Fetch(context context.Context, url string) (*Response, error) {
	if err := context.Err(); err != nil {
		return nil, err
	}

	response, err := fetcher.breaker.Execute(func() (*Response, error) {
		return fetcher.fetchWithRetry(context, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, redact(url))
	}

	return response, err
}

func (fetcher *Fetcher) fetchWithRetry(context context.Context, url string) (*Response, error) {
	policy := &backoff.ExponentialBackOff{
		InitialInterval:     fetcher.initial,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         fetcher.initial << fetcher.maxRetries,
	}
	policy.Reset()

	for attempt := 1; ; attempt++ {
		if err := fetcher.pacer.Wait(context); err != nil {
			return nil, err
		}

		response, err := fetcher.attempt(context, url)
		if err == nil {
			if response.StatusCode >= 200 && response.StatusCode < 300 {
				metrics.CatalogRequests.WithLabelValues("ok").Inc()
			} else {
				metrics.CatalogRequests.WithLabelValues("http_error").Inc()
			}
			return response, nil
		}

		if context.Err() != nil {
			return nil, context.Err()
		}

		metrics.CatalogRequests.WithLabelValues("network_error").Inc()

		if attempt > fetcher.maxRetries {
			metrics.CatalogExhausted.Inc()
			return nil, &FetchExhausted{URL: redact(url), Attempts: attempt, Last: err}
		}

		delay := policy.NextBackOff()
		fetcher.logger.Warn("catalog_retry_scheduled",
			slog.String("url", redact(url)),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		metrics.CatalogRetries.Inc()

		if err := fetcher.sleep(context, delay); err != nil {
			return nil, err
		}
	}
}

// attempt runs one request under the per-attempt timeout and reads the body.
func (fetcher *Fetcher) attempt(parent context.Context, url string) (*Response, error) {
	context, cancel := context.WithTimeout(parent, fetcher.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(context, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	answer, err := fetcher.client.Do(request)
	if err != nil {
		return nil, redactError(err)
	}
	defer answer.Body.Close()

	body, err := io.ReadAll(io.LimitReader(answer.Body, constants.MaxUpstreamBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: answer.StatusCode,
		Header:     answer.Header,
		Body:       body,
		URL:        url,
	}, nil
}

func sleepContext(context context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-context.Done():
		return context.Err()
	case <-timer.C:
		return nil
	}
}

func breakerGauge(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
