// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"log/slog"

	"github.com/taibuivan/cinesync/internal/platform/config"
)

// FromConfig builds the shared Fetcher and a Client bound to the configured
// credential. Both binaries use it so that they pace and retry identically.
func FromConfig(cfg config.CatalogConfig, logger *slog.Logger) *Client {
	fetcher := NewFetcher(FetcherConfig{
		Timeout:         cfg.RequestTimeout,
		MaxRetries:      cfg.MaxRetries,
		BackoffInitial:  cfg.BackoffInitial,
		PacingInterval:  cfg.PacingInterval,
		BreakerFailures: cfg.BreakerFailures,
		BreakerCooldown: cfg.BreakerCooldown,
	}, WithLogger(logger))

	return NewClient(fetcher, cfg.BaseURL, cfg.APIKey)
}
