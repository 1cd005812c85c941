// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/pipeline"
	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/platform/logging"
	"github.com/taibuivan/cinesync/internal/platform/middleware"
	"github.com/taibuivan/cinesync/internal/platform/sec"
)

// recordingSyncer captures the resolved request and answers with err or a
// fixed summary.
type recordingSyncer struct {
	got pipeline.Request
	err error
}

func (syncer *recordingSyncer) Sync(_ context.Context, request pipeline.Request) (*pipeline.Summary, error) {
	syncer.got = request
	if syncer.err != nil {
		return nil, syncer.err
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	return &pipeline.Summary{RunID: "run-1", Imported: pipeline.ImportedCounts{Movies: 3}, Failures: []pipeline.Failure{}}, nil
}

type memoryRecorder struct {
	mu   sync.Mutex
	last *pipeline.Summary
}

func (recorder *memoryRecorder) Record(_ context.Context, summary *pipeline.Summary) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.last = summary
	return nil
}

func (recorder *memoryRecorder) Last(context.Context) (*pipeline.Summary, error) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.last == nil {
		return nil, apperr.NotFound("Sync run")
	}
	return recorder.last, nil
}

type syncFixture struct {
	router   chi.Router
	syncer   *recordingSyncer
	recorder *memoryRecorder
	token    func(role sec.UserRole) string
}

func newSyncFixture(t *testing.T, envAPIKey string) *syncFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "test")

	fixture := &syncFixture{syncer: &recordingSyncer{}, recorder: &memoryRecorder{}}
	fixture.token = func(role sec.UserRole) string {
		token, err := tokens.GenerateAccessToken("ops-1", role, time.Minute)
		require.NoError(t, err)
		return token
	}

	fixture.router = chi.NewRouter()
	fixture.router.Use(middleware.Authenticate(tokens))
	pipeline.NewHandler(fixture.syncer, fixture.recorder, envAPIKey, logging.Discard()).RegisterRoutes(fixture.router)
	return fixture
}

func (fixture *syncFixture) do(method, target, body string, role sec.UserRole) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if role != "" {
		request.Header.Set("Authorization", "Bearer "+fixture.token(role))
	}

	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		target string
		body   string
		want   string
	}{
		{"environment wins", "env-key", "/sync?api_key=query-key", `{"apiKey":"body-key"}`, "env-key"},
		{"body over query", "", "/sync?api_key=query-key", `{"apiKey":"body-key"}`, "body-key"},
		{"query last", "", "/sync?api_key=query-key", ``, "query-key"},
		{"none", "", "/sync", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newSyncFixture(t, tt.env)

			response := fixture.do(http.MethodPost, tt.target, tt.body, sec.RoleOperator)

			require.Equal(t, http.StatusOK, response.Code, response.Body.String())
			assert.Equal(t, tt.want, fixture.syncer.got.APIKey)
		})
	}
}

func TestHandler_ParameterPrecedence(t *testing.T) {
	fixture := newSyncFixture(t, "key")

	response := fixture.do(http.MethodPost, "/sync?contentKind=series&targetCount=7&batchSize=3&clearExisting=true",
		`{"contentKind":"movie","targetCount":5}`, sec.RoleOperator)

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, pipeline.Request{Kind: "movie", TargetCount: 5, BatchSize: 3, ClearExisting: true, APIKey: "key"}, fixture.syncer.got)

	var summary pipeline.Summary
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Imported.Movies)
}

func TestHandler_Defaults(t *testing.T) {
	fixture := newSyncFixture(t, "key")

	response := fixture.do(http.MethodPost, "/sync", "", sec.RoleOperator)

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, pipeline.Request{Kind: pipeline.KindBoth, TargetCount: 20, BatchSize: 1, APIKey: "key"}, fixture.syncer.got)
}

func TestHandler_FailedPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing credential", catalog.ErrMissingCredential, http.StatusBadRequest},
		{"rejected credential", catalog.ErrCredentialRejected, http.StatusUnauthorized},
		{"unreachable catalog", apperr.Upstream("Catalog credential check failed", errors.New("dial tcp: timeout")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newSyncFixture(t, "")
			fixture.syncer.err = tt.err

			response := fixture.do(http.MethodPost, "/sync", "", sec.RoleOperator)

			assert.Equal(t, tt.status, response.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["timestamp"])
			assert.Nil(t, fixture.recorder.last)
		})
	}
}

func TestHandler_InvalidParameters(t *testing.T) {
	fixture := newSyncFixture(t, "key")

	tests := []struct {
		name string
		body string
	}{
		{"target out of range", `{"targetCount":5000}`},
		{"unknown kind", `{"contentKind":"anime"}`},
		{"malformed json", `{"targetCount":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := fixture.do(http.MethodPost, "/sync", tt.body, sec.RoleOperator)

			assert.Equal(t, http.StatusBadRequest, response.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["timestamp"])
			assert.NotContains(t, body, "code")
		})
	}
}

func TestHandler_Authorization(t *testing.T) {
	fixture := newSyncFixture(t, "key")

	assert.Equal(t, http.StatusUnauthorized, fixture.do(http.MethodPost, "/sync", "", "").Code)
	assert.Equal(t, http.StatusForbidden, fixture.do(http.MethodPost, "/sync", "", sec.RoleViewer).Code)
	assert.Equal(t, http.StatusOK, fixture.do(http.MethodPost, "/sync", "", sec.RoleAdmin).Code)
}

func TestHandler_LastRun(t *testing.T) {
	fixture := newSyncFixture(t, "key")

	assert.Equal(t, http.StatusNotFound, fixture.do(http.MethodGet, "/sync/last", "", sec.RoleOperator).Code)

	require.Equal(t, http.StatusOK, fixture.do(http.MethodPost, "/sync", "", sec.RoleOperator).Code)

	response := fixture.do(http.MethodGet, "/sync/last", "", sec.RoleOperator)
	require.Equal(t, http.StatusOK, response.Code)

	var envelope struct {
		Data pipeline.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
	assert.Equal(t, "run-1", envelope.Data.RunID)
}
