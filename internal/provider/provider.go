// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package provider classifies distribution entities and persists where a title can be watched.

# Two Feeds

The catalog publishes two independent feeds that are never merged:

  - Distribution feed: where a title can actually be consumed, per country
    and monetization. Stored with source type watch_provider.
  - Production feed: the networks attached to a series. Stored with source
    type network and excluded from where-to-watch answers.

A real platform appearing in both feeds yields two rows ("watch:8" and
"network:213"), each tagged with its own role.
*/
package provider

import (
	"fmt"
	"slices"
	"strings"

	"github.com/taibuivan/cinesync/internal/content"
)

// # Taxonomy

// Type is the classified nature of a provider.
type Type string

const (
	TypeStreaming       Type = "streaming"
	TypeNetwork         Type = "network"
	TypeDigitalPurchase Type = "digital_purchase"
	TypeFree            Type = "free"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeStreaming, TypeNetwork, TypeDigitalPurchase, TypeFree:
		return true
	}
	return false
}

// SourceType is the feed a provider or link came from.
type SourceType string

const (
	SourceWatchProvider SourceType = "watch_provider"
	SourceNetwork       SourceType = "network"
)

// Valid reports whether s is a known feed.
func (s SourceType) Valid() bool {
	return s == SourceWatchProvider || s == SourceNetwork
}

// Monetization is how an offer is paid for.
type Monetization string

const (
	MonetizationFlatrate  Monetization = "flatrate"
	MonetizationBuy       Monetization = "buy"
	MonetizationRent      Monetization = "rent"
	MonetizationAds       Monetization = "ads"
	MonetizationFree      Monetization = "free"
	MonetizationBroadcast Monetization = "broadcast"
)

// # Entities

// Provider is a distribution or production entity keyed by canonical id.
type Provider struct {
	ID         string     `json:"id"`
	ExternalID int64      `json:"external_id"`
	Name       string     `json:"name"`
	LogoPath   string     `json:"logo_path"`
	Type       Type       `json:"type"`
	SourceType SourceType `json:"source_type"`
	Active     bool       `json:"active"`
	Regions    []string   `json:"regions"`
}

// Link ties a content item to a provider for one country and monetization.
// The first five fields form its unique key.
type Link struct {
	ContentID       int64        `json:"content_id"`
	ContentKind     content.Kind `json:"content_kind"`
	ProviderID      string       `json:"provider_id"`
	Country         string       `json:"country"`
	Monetization    Monetization `json:"monetization"`
	DeepLink        string       `json:"deep_link"`
	Quality         string       `json:"quality"`
	DisplayPriority int          `json:"display_priority"`
	SourceType      SourceType   `json:"source_type"`
}

// Key returns the unique key of the link.
func (link Link) Key() string {
	return fmt.Sprintf("%d|%s|%s|%s|%s", link.ContentID, link.ContentKind, link.ProviderID, link.Country, link.Monetization)
}

// Offer is one where-to-watch answer row.
type Offer struct {
	ProviderID      string       `json:"provider_id"`
	ProviderName    string       `json:"provider_name"`
	LogoPath        string       `json:"logo_path"`
	Type            Type         `json:"type"`
	Country         string       `json:"country"`
	Monetization    Monetization `json:"monetization"`
	DeepLink        string       `json:"deep_link"`
	Quality         string       `json:"quality"`
	DisplayPriority int          `json:"display_priority"`
}

// Filter narrows provider listings.
type Filter struct {
	Type       Type
	SourceType SourceType
}

// CanonicalID derives the role-scoped provider id.
func CanonicalID(source SourceType, externalID int64) string {
	if source == SourceNetwork {
		return fmt.Sprintf("network:%d", externalID)
	}
	return fmt.Sprintf("watch:%d", externalID)
}

// Dedupe collapses providers sharing a canonical id, unioning their regions.
// The last occurrence wins for mutable fields. Output is sorted by id.
func Dedupe(providers []Provider) []Provider {
	byID := make(map[string]*Provider, len(providers))
	for _, candidate := range providers {
		existing, found := byID[candidate.ID]
		if !found {
			copied := candidate
			copied.Regions = normalizeRegions(candidate.Regions)
			byID[candidate.ID] = &copied
			continue
		}

		regions := append(existing.Regions, candidate.Regions...)
		*existing = candidate
		existing.Regions = normalizeRegions(regions)
	}

	deduped := make([]Provider, 0, len(byID))
	for _, provider := range byID {
		deduped = append(deduped, *provider)
	}
	slices.SortFunc(deduped, func(a, b Provider) int { return strings.Compare(a.ID, b.ID) })

	return deduped
}

// normalizeRegions upper-cases, drops blanks, sorts and dedupes. Never nil.
func normalizeRegions(regions []string) []string {
	normalized := make([]string, 0, len(regions))
	for _, region := range regions {
		if code := strings.ToUpper(strings.TrimSpace(region)); code != "" {
			normalized = append(normalized, code)
		}
	}
	slices.Sort(normalized)
	return slices.Compact(normalized)
}
