// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/cinesync/internal/platform/metrics"
)

/*
TestObserveHTTP increments the labelled request counter.
*/
func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodPost, "/api/v1/sync", "202"))
	unmatched := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404"))

	metrics.ObserveHTTP(http.MethodPost, "/api/v1/sync", http.StatusAccepted, 20*time.Millisecond)
	metrics.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodPost, "/api/v1/sync", "202")))
	assert.Equal(t, unmatched+1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

/*
TestHandler exposes the registered families.
*/
func TestHandler(t *testing.T) {
	metrics.SyncItems.WithLabelValues("movie", "created").Inc()

	recorder := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "sync_items_total")
}
