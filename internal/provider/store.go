// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"

	"github.com/taibuivan/cinesync/internal/content"
)

// UpsertCounts tells how many provider rows an upsert created or changed.
type UpsertCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Add accumulates other into counts.
func (counts *UpsertCounts) Add(other UpsertCounts) {
	counts.Created += other.Created
	counts.Updated += other.Updated
}

// Repository persists providers and their links.
type Repository interface {
	// UpsertProviders inserts new rows and updates changed ones by canonical id.
	UpsertProviders(context context.Context, providers []Provider) (UpsertCounts, error)

	// UpsertLinks writes links keyed by their unique 5-tuple.
	UpsertLinks(context context.Context, links []Link) error

	ListAll(context context.Context) ([]Provider, error)
	List(context context.Context, filter Filter, limit, offset int) ([]Provider, int, error)

	// UpdateClassification rewrites the type and active flag of one provider.
	UpdateClassification(context context.Context, id string, providerType Type, active bool) error

	// DeleteLinks removes every link of the given providers.
	DeleteLinks(context context.Context, providerIDs []string) (int64, error)

	// WhereToWatch lists active distribution offers of one item.
	WhereToWatch(context context.Context, kind content.Kind, contentID int64, countries []string) ([]Offer, error)
}
