// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, pipeline limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Pipeline: Page size and invocation bounds for the sync orchestrator.
  - Security: JWT issuer and HTTP header names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "cinesync"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// SyncRequestTimeout bounds a synchronous sync invocation over HTTP.
	SyncRequestTimeout = 30 * time.Minute

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Pipeline

const (
	// CatalogPageSize is the fixed number of results per listing page upstream.
	CatalogPageSize = 20

	// DefaultTargetCount is used when a caller does not specify targetCount.
	DefaultTargetCount = 20

	// MaxTargetCount caps a single invocation per kind.
	MaxTargetCount = 1000

	// DefaultBatchSize processes one item at a time.
	DefaultBatchSize = 1

	// MaxBatchSize caps concurrent item workers.
	MaxBatchSize = 10

	// BaselineLanguage is always requested during translation fan-out.
	BaselineLanguage = "en"

	// MaxUpstreamBodyBytes caps how much of a catalog response is read.
	MaxUpstreamBodyBytes = 4 << 20

	// LastRunTTL is how long the last sync summary is kept in Redis.
	LastRunTTL = 7 * 24 * time.Hour
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim in operator JWTs.
	AuthIssuer = "cinesync.app"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Database Schemas

const (
	SchemaMedia = "media"
)

// # Redis Keys

const (
	RedisKeyLastRun = "sync:last_run"
)
