// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"time"

	"github.com/taibuivan/cinesync/internal/content"
)

// Category is a refreshable slice of item data with its own timestamp.
type Category string

const (
	CategoryProviders Category = "providers"
	CategoryRatings   Category = "ratings"
)

// Gate decides whether a category is due for a catalog call.
type Gate struct {
	window time.Duration
	now    func() time.Time
}

// NewGate creates a new Gate. A nil clock uses time.Now.
func NewGate(window time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{window: window, now: now}
}

/*
IsStale reports whether category of item must be refreshed at now.

Description: A nil item is new and therefore stale. Otherwise the category is
stale when its timestamp is null or at least one window old.

Parameters:
  - item: *content.Item (stored record, nil if unknown)
  - category: Category
  - now: time.Time

Returns:
  - bool: true if a catalog call is due
*/
func (gate *Gate) IsStale(item *content.Item, category Category, now time.Time) bool {
	if item == nil {
		return true
	}

	var stamped *time.Time
	switch category {
	case CategoryProviders:
		stamped = item.ProvidersUpdatedAt
	case CategoryRatings:
		stamped = item.RatingsUpdatedAt
	}

	return stamped == nil || now.Sub(*stamped) >= gate.window
}

// Due is IsStale against the gate's clock.
func (gate *Gate) Due(item *content.Item, category Category) bool {
	return gate.IsStale(item, category, gate.now())
}
