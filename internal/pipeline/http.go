// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/platform/constants"
	"github.com/taibuivan/cinesync/internal/platform/middleware"
	requestutil "github.com/taibuivan/cinesync/internal/platform/request"
	"github.com/taibuivan/cinesync/internal/platform/respond"
	"github.com/taibuivan/cinesync/internal/platform/sec"
	"github.com/taibuivan/cinesync/pkg/pointer"
)

// Syncer runs a sync request. *Orchestrator satisfies it.
type Syncer interface {
	Sync(context context.Context, request Request) (*Summary, error)
}

// # Handler Implementation

// Handler exposes the sync invocation and the last-run summary.
type Handler struct {
	syncer    Syncer
	recorder  Recorder
	envAPIKey string
	logger    *slog.Logger
}

// NewHandler creates a new Handler. envAPIKey is the credential from the
// process environment; it wins over any credential in the request.
func NewHandler(syncer Syncer, recorder Recorder, envAPIKey string, logger *slog.Logger) *Handler {
	return &Handler{syncer: syncer, recorder: recorder, envAPIKey: envAPIKey, logger: logger}
}

// RegisterRoutes mounts the sync endpoints. Both require the operator role.
//
//   - POST /sync       run the pipeline
//   - GET  /sync/last  last recorded summary
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(operator chi.Router) {
		operator.Use(middleware.RequireRole(sec.RoleOperator))
		operator.Post("/sync", handler.sync)
		operator.Get("/sync/last", handler.last)
	})
}

// syncBody mirrors Request with optional fields so that absent values fall
// through to the query string.
type syncBody struct {
	ContentKind   string `json:"contentKind"`
	TargetCount   *int   `json:"targetCount"`
	ClearExisting *bool  `json:"clearExisting"`
	BatchSize     *int   `json:"batchSize"`
	APIKey        string `json:"apiKey"`
}

// failedPrecondition is the body of a request rejected before any work.
type failedPrecondition struct {
	Success   bool                `json:"success"`
	Error     string              `json:"error"`
	Details   []apperr.FieldError `json:"details,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// rejectRequest answers a request that failed validation or a credential
// check. Status codes come from the error when it is an [apperr.AppError].
func rejectRequest(writer http.ResponseWriter, status int, err error) {
	body := failedPrecondition{Error: err.Error(), Timestamp: time.Now().UTC()}
	if appError := apperr.As(err); appError != nil {
		status = appError.HTTPStatus
		body.Error = appError.Message
		body.Details = appError.Details
	}
	respond.JSON(writer, status, body)
}

/*
POST /api/v1/sync.

Request (body or query; body wins):
  - contentKind: movie | series | both (default both)
  - targetCount: int (1..1000, default 20)
  - clearExisting: bool
  - batchSize: int (1..10, default 1)
  - apiKey (body) / api_key (query): catalog credential

Response:
  - 200: Summary
  - 400: invalid parameters or missing credential
  - 401: rejected credential
  - 502: credential check could not reach the catalog
*/
func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	var body syncBody
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		rejectRequest(writer, http.StatusBadRequest, err)
		return
	}

	syncRequest := resolveRequest(request, body, handler.envAPIKey)

	operator := ""
	if claims := requestutil.Claims(request); claims != nil {
		operator = claims.Subject
	}
	handler.logger.InfoContext(request.Context(), "sync_requested",
		slog.String("operator", operator),
		slog.String("content_kind", syncRequest.Kind),
		slog.Int("target_count", syncRequest.TargetCount),
		slog.Int("batch_size", syncRequest.BatchSize),
		slog.Bool("clear_existing", syncRequest.ClearExisting),
	)

	// Runs outlive the server's default write deadline.
	_ = http.NewResponseController(writer).SetWriteDeadline(time.Now().Add(constants.SyncRequestTimeout))
	context, cancel := context.WithTimeout(request.Context(), constants.SyncRequestTimeout)
	defer cancel()

	summary, err := handler.syncer.Sync(context, syncRequest)
	switch {
	case errors.Is(err, catalog.ErrMissingCredential):
		rejectRequest(writer, http.StatusBadRequest, err)
		return
	case errors.Is(err, catalog.ErrCredentialRejected):
		rejectRequest(writer, http.StatusUnauthorized, err)
		return
	case apperr.HasCode(err, apperr.CodeValidation), apperr.HasCode(err, apperr.CodeUpstream):
		rejectRequest(writer, http.StatusBadRequest, err)
		return
	case err != nil:
		respond.Error(writer, request, err)
		return
	}

	if handler.recorder != nil {
		if err := handler.recorder.Record(request.Context(), summary); err != nil {
			handler.logger.WarnContext(request.Context(), "sync_summary_record_failed", slog.Any("error", err))
		}
	}

	respond.JSON(writer, http.StatusOK, summary)
}

/*
GET /api/v1/sync/last.

Response:
  - 200: Summary
  - 404: nothing recorded yet
*/
func (handler *Handler) last(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.recorder.Last(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}

// resolveRequest applies the precedence rules: environment, body, query for
// the credential; body, query, default for everything else.
func resolveRequest(request *http.Request, body syncBody, envAPIKey string) Request {
	return Request{
		Kind:          firstNonEmpty(body.ContentKind, requestutil.QueryString(request, "contentKind"), KindBoth),
		TargetCount:   pointer.Fallback(body.TargetCount, requestutil.QueryInt(request, "targetCount", constants.DefaultTargetCount)),
		ClearExisting: pointer.Fallback(body.ClearExisting, requestutil.QueryBool(request, "clearExisting")),
		BatchSize:     pointer.Fallback(body.BatchSize, requestutil.QueryInt(request, "batchSize", constants.DefaultBatchSize)),
		APIKey:        firstNonEmpty(envAPIKey, body.APIKey, requestutil.QueryString(request, "api_key")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
