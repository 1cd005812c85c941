// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"maps"
	"slices"
	"strings"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
)

// Classified is the provider rows and links derived from one item's feeds.
type Classified struct {
	Providers []Provider
	Links     []Link
}

// Append adds other's rows and re-applies dedupe on both sides.
func (classified Classified) Append(other Classified) Classified {
	return Classified{
		Providers: Dedupe(append(slices.Clone(classified.Providers), other.Providers...)),
		Links:     dedupeLinks(append(slices.Clone(classified.Links), other.Links...)),
	}
}

/*
FromWatchProviders classifies the distribution feed of one item.

Description: Every (country, monetization, provider) entry becomes a
watch_provider link. Providers are deduplicated by canonical id with the
offering countries as regions. Links of inactive providers are dropped.

Parameters:
  - rules: *RuleSet
  - kind: content.Kind
  - contentID: int64
  - feed: *catalog.WatchProviders

Returns:
  - Classified: providers and links, deterministic order
*/
func FromWatchProviders(rules *RuleSet, kind content.Kind, contentID int64, feed *catalog.WatchProviders) Classified {
	var (
		providers []Provider
		links     []Link
	)
	if feed == nil {
		return Classified{Providers: []Provider{}, Links: []Link{}}
	}

	for _, country := range slices.Sorted(maps.Keys(feed.Results)) {
		offers := feed.Results[country]
		code := strings.ToUpper(country)

		for _, group := range []struct {
			monetization Monetization
			entries      []catalog.WatchProvider
		}{
			{MonetizationFlatrate, offers.Flatrate},
			{MonetizationFree, offers.Free},
			{MonetizationAds, offers.Ads},
			{MonetizationRent, offers.Rent},
			{MonetizationBuy, offers.Buy},
		} {
			for _, entry := range group.entries {
				provider := rules.Provider(Raw{
					ExternalID: entry.ProviderID,
					Name:       entry.ProviderName,
					LogoPath:   entry.LogoPath,
					Source:     SourceWatchProvider,
				}, code)
				providers = append(providers, provider)

				if !provider.Active {
					continue
				}
				links = append(links, Link{
					ContentID:       contentID,
					ContentKind:     kind,
					ProviderID:      provider.ID,
					Country:         code,
					Monetization:    group.monetization,
					DeepLink:        offers.Link,
					DisplayPriority: entry.DisplayPriority,
					SourceType:      SourceWatchProvider,
				})
			}
		}
	}

	return Classified{Providers: Dedupe(providers), Links: dedupeLinks(links)}
}

// FromNetworks classifies the production feed of a series. Each network
// yields a broadcast link in its origin country.
func FromNetworks(rules *RuleSet, kind content.Kind, contentID int64, networks []catalog.Network) Classified {
	var (
		providers []Provider
		links     []Link
	)

	for _, network := range networks {
		country := strings.ToUpper(strings.TrimSpace(network.OriginCountry))

		provider := rules.Provider(Raw{
			ExternalID: network.ID,
			Name:       network.Name,
			LogoPath:   network.LogoPath,
			Source:     SourceNetwork,
		}, country)
		providers = append(providers, provider)

		if !provider.Active {
			continue
		}
		links = append(links, Link{
			ContentID:    contentID,
			ContentKind:  kind,
			ProviderID:   provider.ID,
			Country:      country,
			Monetization: MonetizationBroadcast,
			SourceType:   SourceNetwork,
		})
	}

	return Classified{Providers: Dedupe(providers), Links: dedupeLinks(links)}
}

// dedupeLinks keeps the first link per unique key. Never nil.
func dedupeLinks(links []Link) []Link {
	seen := make(map[string]struct{}, len(links))
	deduped := make([]Link, 0, len(links))
	for _, link := range links {
		if _, duplicate := seen[link.Key()]; duplicate {
			continue
		}
		seen[link.Key()] = struct{}{}
		deduped = append(deduped, link)
	}
	return deduped
}
