// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/cinesync/internal/api"
	"github.com/taibuivan/cinesync/internal/platform/logging"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		deps       api.HealthDependencies
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ready",
			deps:       api.HealthDependencies{CheckDatabase: ok, CheckCache: ok},
			wantStatus: http.StatusOK,
			wantBody:   `{"data":{"status":"ready","checks":[{"name":"postgres","ok":true},{"name":"redis","ok":true}]}}`,
		},
		{
			name:       "redis down",
			deps:       api.HealthDependencies{CheckDatabase: ok, CheckCache: down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"data":{"status":"degraded","checks":[{"name":"postgres","ok":true},{"name":"redis","ok":false,"error":"connection refused"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			liveness, readiness := api.NewHealthHandlers(tt.deps, logging.Discard())

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())

			recorder = httptest.NewRecorder()
			liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	}
}
