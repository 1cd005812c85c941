// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes the Prometheus instruments of the sync pipeline.

Instruments are registered on the default registry at package init and
served by [Handler] on /metrics.

Families:

  - catalog_*: outbound calls to the external catalog API.
  - sync_*: orchestrator item outcomes and run durations.
  - http_*: inbound API requests.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # Catalog

var (
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Outbound catalog HTTP attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "http_error", "network_error"
	)

	CatalogRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_retries_total",
			Help: "Catalog attempts scheduled after a network failure",
		},
	)

	CatalogExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_fetch_exhausted_total",
			Help: "Catalog fetches that failed after every retry",
		},
	)

	CatalogBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// # Sync

var (
	SyncItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_items_total",
			Help: "Items processed by the orchestrator by kind and outcome",
		},
		[]string{"kind", "outcome"}, // "created", "updated", "unchanged", "failed"
	)

	SyncStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_stage_failures_total",
			Help: "Scoped failures by pipeline stage",
		},
		[]string{"stage"},
	)

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Wall time of a sync run per kind",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"kind"},
	)
)

// # HTTP

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Inbound API requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Inbound API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one finished inbound request. route is the matched
// router pattern, never the raw path, to keep label cardinality bounded.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
