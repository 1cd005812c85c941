// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/apperr"
	"github.com/taibuivan/cinesync/internal/platform/middleware"
	requestutil "github.com/taibuivan/cinesync/internal/platform/request"
	"github.com/taibuivan/cinesync/internal/platform/respond"
	"github.com/taibuivan/cinesync/internal/platform/sec"
	"github.com/taibuivan/cinesync/internal/platform/validate"
	"github.com/taibuivan/cinesync/pkg/pagination"
)

// # Handler Implementation

// Handler exposes provider listings, where-to-watch and reclassification.
type Handler struct {
	repository   Repository
	reclassifier *Reclassifier
}

// NewHandler creates a new Handler.
func NewHandler(repository Repository, reclassifier *Reclassifier) *Handler {
	return &Handler{repository: repository, reclassifier: reclassifier}
}

// RegisterRoutes mounts the provider endpoints on the versioned API router.
//
//   - GET  /providers             public
//   - POST /providers/reclassify  admin
//   - GET  /watch/{kind}/{id}     public
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/providers", handler.listProviders)
	router.Get("/watch/{kind}/{id}", handler.whereToWatch)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/providers/reclassify", handler.reclassify)
	})
}

/*
GET /api/v1/providers.

Request:
  - type: string (streaming, network, digital_purchase, free)
  - source: string (watch_provider, network)
  - page, limit: int

Response:
  - 200: []Provider with pagination meta
*/
func (handler *Handler) listProviders(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Type:       Type(requestutil.QueryString(request, "type")),
		SourceType: SourceType(requestutil.QueryString(request, "source")),
	}

	validator := &validate.Validator{}
	if filter.Type != "" {
		validator.OneOf("type", string(filter.Type),
			string(TypeStreaming), string(TypeNetwork), string(TypeDigitalPurchase), string(TypeFree))
	}
	if filter.SourceType != "" {
		validator.OneOf("source", string(filter.SourceType), string(SourceWatchProvider), string(SourceNetwork))
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	providers, total, err := handler.repository.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, providers, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/watch/{kind}/{id}.

Request:
  - kind: movie | series
  - id: int64 (catalog id)
  - countries: string (comma separated, optional)

Response:
  - 200: []Offer
*/
func (handler *Handler) whereToWatch(writer http.ResponseWriter, request *http.Request) {
	kind := content.Kind(requestutil.Param(request, "kind"))
	id, err := strconv.ParseInt(requestutil.Param(request, "id"), 10, 64)

	validator := &validate.Validator{}
	validator.OneOf("kind", string(kind), content.KindNames()...)
	validator.Custom("id", err != nil || id <= 0, "Must be a positive integer")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	offers, err := handler.repository.WhereToWatch(request.Context(), kind, id, requestutil.QueryList(request, "countries"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, offers)
}

/*
POST /api/v1/providers/reclassify.

Response:
  - 200: ReclassifyResult
*/
func (handler *Handler) reclassify(writer http.ResponseWriter, request *http.Request) {
	if handler.reclassifier == nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Reclassification is not configured"))
		return
	}

	result, err := handler.reclassifier.Reclassify(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
