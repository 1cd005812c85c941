// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/taibuivan/cinesync/internal/platform/ctxutil"
	"github.com/taibuivan/cinesync/internal/platform/sec"
	"github.com/taibuivan/cinesync/internal/platform/validate"
	"github.com/taibuivan/cinesync/pkg/convert"
	"github.com/taibuivan/cinesync/pkg/query"
)

// maxBodyBytes bounds request bodies; invocation payloads are tiny.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Description: An empty body is accepted and leaves target untouched, because
every field of the pipeline invocation may also arrive as a query parameter.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil || request.Body == http.NoBody {
		return nil
	}

	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
QueryString returns a trimmed query parameter.
*/
func QueryString(request *http.Request, name string) string {
	return strings.TrimSpace(request.URL.Query().Get(name))
}

/*
QueryInt returns an integer query parameter or the fallback.
*/
func QueryInt(request *http.Request, name string, fallback int) int {
	return convert.ToIntD(QueryString(request, name), fallback)
}

/*
QueryBool returns a boolean query parameter ("true", "1"); false otherwise.
*/
func QueryBool(request *http.Request, name string) bool {
	return convert.ToBool(QueryString(request, name))
}

/*
QueryList splits a comma-separated query parameter into trimmed values.
*/
func QueryList(request *http.Request, name string) []string {
	return query.StringSlice(request.URL.Query().Get(name))
}

/*
Claims extracts the verified operator claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}
