// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider_test

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/dberr"
	"github.com/taibuivan/cinesync/internal/provider"
)

// memoryRepository is an in-memory provider.Repository.
type memoryRepository struct {
	mu        sync.Mutex
	providers map[string]provider.Provider
	links     map[string]provider.Link
	updates   int
}

func newMemoryRepository(providers ...provider.Provider) *memoryRepository {
	repository := &memoryRepository{
		providers: map[string]provider.Provider{},
		links:     map[string]provider.Link{},
	}
	for _, p := range providers {
		repository.providers[p.ID] = p
	}
	return repository
}

func (repository *memoryRepository) UpsertProviders(_ context.Context, providers []provider.Provider) (provider.UpsertCounts, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var counts provider.UpsertCounts
	for _, p := range providers {
		if _, found := repository.providers[p.ID]; found {
			counts.Updated++
		} else {
			counts.Created++
		}
		repository.providers[p.ID] = p
	}
	return counts, nil
}

func (repository *memoryRepository) UpsertLinks(_ context.Context, links []provider.Link) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, link := range links {
		repository.links[link.Key()] = link
	}
	return nil
}

func (repository *memoryRepository) ListAll(_ context.Context) ([]provider.Provider, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	all := make([]provider.Provider, 0, len(repository.providers))
	for _, p := range repository.providers {
		all = append(all, p)
	}
	slices.SortFunc(all, func(a, b provider.Provider) int { return strings.Compare(a.ID, b.ID) })
	return all, nil
}

func (repository *memoryRepository) List(ctx context.Context, filter provider.Filter, limit, offset int) ([]provider.Provider, int, error) {
	all, _ := repository.ListAll(ctx)

	matching := make([]provider.Provider, 0)
	for _, p := range all {
		if (filter.Type == "" || p.Type == filter.Type) && (filter.SourceType == "" || p.SourceType == filter.SourceType) {
			matching = append(matching, p)
		}
	}

	total := len(matching)
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)
	return matching[offset:end], total, nil
}

func (repository *memoryRepository) UpdateClassification(_ context.Context, id string, providerType provider.Type, active bool) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	p, found := repository.providers[id]
	if !found {
		return dberr.ErrNotFound
	}
	p.Type, p.Active = providerType, active
	repository.providers[id] = p
	repository.updates++
	return nil
}

func (repository *memoryRepository) DeleteLinks(_ context.Context, providerIDs []string) (int64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var deleted int64
	for key, link := range repository.links {
		if slices.Contains(providerIDs, link.ProviderID) {
			delete(repository.links, key)
			deleted++
		}
	}
	return deleted, nil
}

func (repository *memoryRepository) WhereToWatch(_ context.Context, kind content.Kind, contentID int64, countries []string) ([]provider.Offer, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	offers := make([]provider.Offer, 0)
	for _, link := range repository.links {
		p := repository.providers[link.ProviderID]
		if link.ContentKind != kind || link.ContentID != contentID || link.SourceType != provider.SourceWatchProvider || !p.Active {
			continue
		}
		if len(countries) > 0 && !slices.Contains(countries, link.Country) {
			continue
		}
		offers = append(offers, provider.Offer{ProviderID: p.ID, ProviderName: p.Name, Type: p.Type, Country: link.Country, Monetization: link.Monetization})
	}
	return offers, nil
}

// passthroughTx runs fn directly.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
