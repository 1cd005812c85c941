// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/dberr"
	"github.com/taibuivan/cinesync/internal/provider"
)

// # Catalog

// fakeTitle is one item served by fakeCatalog.
type fakeTitle struct {
	Original string
	Language string
	Titles   map[string]string // by language; the default rendition is "en"
	Networks []catalog.Network
	Country  string // watch provider and certification country
}

// fakeCatalog serves a TMDB shaped API from memory and counts calls per path.
type fakeCatalog struct {
	mu       sync.Mutex
	apiKey   string
	titles   map[string]map[int64]fakeTitle // keyed by "movie" / "tv"
	trending map[string][]int64
	failing  map[string]bool // "/path" or "/path?language=xx" answered with 500
	calls    map[string]int
	onCall   func(path string)
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		apiKey:   "key",
		titles:   map[string]map[int64]fakeTitle{"movie": {}, "tv": {}},
		trending: map[string][]int64{},
		failing:  map[string]bool{},
		calls:    map[string]int{},
	}
}

func (fake *fakeCatalog) add(segment string, id int64, title fakeTitle) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.titles[segment][id] = title
	fake.trending[segment] = append(fake.trending[segment], id)
}

func (fake *fakeCatalog) fail(key string) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.failing[key] = true
}

func (fake *fakeCatalog) count(path string) int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.calls[path]
}

func (fake *fakeCatalog) total() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	total := 0
	for _, calls := range fake.calls {
		total += calls
	}
	return total
}

func (fake *fakeCatalog) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	path := request.URL.Path
	language := request.URL.Query().Get("language")

	fake.mu.Lock()
	fake.calls[path]++
	onCall := fake.onCall
	failing := fake.failing[path] || (language != "" && fake.failing[path+"?language="+language])
	fake.mu.Unlock()

	if onCall != nil {
		onCall(path)
	}

	if request.URL.Query().Get("api_key") != fake.apiKey {
		writer.WriteHeader(http.StatusUnauthorized)
		return
	}
	if failing {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case parts[0] == "configuration":
		writeJSON(writer, map[string]any{})
	case parts[0] == "trending":
		fake.serveTrending(writer, request, parts[1])
	default:
		fake.serveItem(writer, language, parts)
	}
}

func (fake *fakeCatalog) serveTrending(writer http.ResponseWriter, request *http.Request, segment string) {
	fake.mu.Lock()
	ids := slices.Clone(fake.trending[segment])
	fake.mu.Unlock()

	page, _ := strconv.Atoi(request.URL.Query().Get("page"))
	start, end := min((page-1)*20, len(ids)), min(page*20, len(ids))

	results := make([]map[string]any, 0)
	for _, id := range ids[start:end] {
		results = append(results, map[string]any{"id": id})
	}
	writeJSON(writer, map[string]any{"page": page, "total_pages": (len(ids) + 19) / 20, "results": results})
}

func (fake *fakeCatalog) serveItem(writer http.ResponseWriter, language string, parts []string) {
	segment := parts[0]
	id, _ := strconv.ParseInt(parts[1], 10, 64)

	fake.mu.Lock()
	title, found := fake.titles[segment][id]
	fake.mu.Unlock()

	if !found {
		writer.WriteHeader(http.StatusNotFound)
		return
	}

	country := title.Country
	if country == "" {
		country = "US"
	}

	switch {
	case len(parts) == 2:
		if language == "" {
			language = "en"
		}
		localized := title.Titles[language]
		document := map[string]any{
			"id":                id,
			"original_language": title.Language,
			"overview":          "",
			"popularity":        42.5,
			"vote_average":      8.2,
			"vote_count":        100,
			"status":            "Released",
			"networks":          title.Networks,
		}
		if segment == "tv" {
			document["name"], document["original_name"], document["first_air_date"] = localized, title.Original, "2011-04-17"
		} else {
			document["title"], document["original_title"], document["release_date"] = localized, title.Original, "1999-03-30"
		}
		if localized != "" {
			document["overview"] = localized + " overview"
		}
		writeJSON(writer, document)

	case parts[2] == "watch":
		writeJSON(writer, map[string]any{"id": id, "results": map[string]any{
			country: map[string]any{
				"link":     "https://example.com/" + parts[1],
				"flatrate": []map[string]any{{"provider_id": 8, "provider_name": "Netflix", "display_priority": 1}},
			},
		}})

	case parts[2] == "release_dates":
		writeJSON(writer, map[string]any{"results": []map[string]any{
			{"iso_3166_1": country, "release_dates": []map[string]any{{"certification": "R", "type": 3}}},
		}})

	case parts[2] == "content_ratings":
		writeJSON(writer, map[string]any{"results": []map[string]any{{"iso_3166_1": country, "rating": "TV-MA"}}})

	default:
		writer.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(writer http.ResponseWriter, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(payload)
}

// # Stores

// memoryContents is an in-memory content.Repository applying content.Merge.
type memoryContents struct {
	mu           sync.Mutex
	items        map[string]*content.Item
	deleteErrors map[content.Kind]error
}

func newMemoryContents() *memoryContents {
	return &memoryContents{items: map[string]*content.Item{}, deleteErrors: map[content.Kind]error{}}
}

func contentKey(kind content.Kind, id int64) string {
	return string(kind) + ":" + strconv.FormatInt(id, 10)
}

func (repository *memoryContents) Find(_ context.Context, kind content.Kind, id int64) (*content.Item, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	item, found := repository.items[contentKey(kind, id)]
	if !found {
		return nil, dberr.ErrNotFound
	}
	return item, nil
}

func (repository *memoryContents) Save(_ context.Context, item *content.Item) (*content.Item, content.SaveOutcome, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := contentKey(item.Kind, item.ID)
	stored := repository.items[key]

	merged, changed := content.Merge(stored, item)
	switch {
	case stored == nil:
		repository.items[key] = merged
		return merged, content.OutcomeCreated, nil
	case !changed:
		return stored, content.OutcomeUnchanged, nil
	default:
		repository.items[key] = merged
		return merged, content.OutcomeUpdated, nil
	}
}

func (repository *memoryContents) DeleteAll(_ context.Context, kind content.Kind) (int64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if err := repository.deleteErrors[kind]; err != nil {
		return 0, err
	}

	var deleted int64
	for key, item := range repository.items {
		if item.Kind == kind {
			delete(repository.items, key)
			deleted++
		}
	}
	return deleted, nil
}

func (repository *memoryContents) get(kind content.Kind, id int64) *content.Item {
	item, _ := repository.Find(context.Background(), kind, id)
	return item
}

// memoryProviders is an in-memory provider.Repository that, like the SQL
// upsert, only counts rows whose values change.
type memoryProviders struct {
	mu        sync.Mutex
	providers map[string]provider.Provider
	links     map[string]provider.Link
}

func newMemoryProviders() *memoryProviders {
	return &memoryProviders{providers: map[string]provider.Provider{}, links: map[string]provider.Link{}}
}

func (repository *memoryProviders) UpsertProviders(_ context.Context, providers []provider.Provider) (provider.UpsertCounts, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var counts provider.UpsertCounts
	for _, incoming := range providers {
		stored, found := repository.providers[incoming.ID]
		if !found {
			repository.providers[incoming.ID] = incoming
			counts.Created++
			continue
		}

		regions := slices.Compact(slices.Sorted(slices.Values(append(slices.Clone(stored.Regions), incoming.Regions...))))
		merged := incoming
		merged.Regions = regions
		if stored.Name != merged.Name || stored.LogoPath != merged.LogoPath || stored.Type != merged.Type ||
			stored.Active != merged.Active || !slices.Equal(stored.Regions, merged.Regions) {
			repository.providers[incoming.ID] = merged
			counts.Updated++
		}
	}
	return counts, nil
}

func (repository *memoryProviders) UpsertLinks(_ context.Context, links []provider.Link) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, link := range links {
		repository.links[link.Key()] = link
	}
	return nil
}

func (repository *memoryProviders) ListAll(_ context.Context) ([]provider.Provider, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	all := make([]provider.Provider, 0, len(repository.providers))
	for _, p := range repository.providers {
		all = append(all, p)
	}
	slices.SortFunc(all, func(a, b provider.Provider) int { return strings.Compare(a.ID, b.ID) })
	return all, nil
}

func (repository *memoryProviders) List(ctx context.Context, _ provider.Filter, _, _ int) ([]provider.Provider, int, error) {
	all, _ := repository.ListAll(ctx)
	return all, len(all), nil
}

func (repository *memoryProviders) UpdateClassification(context.Context, string, provider.Type, bool) error {
	return nil
}

func (repository *memoryProviders) DeleteLinks(context.Context, []string) (int64, error) {
	return 0, nil
}

func (repository *memoryProviders) WhereToWatch(context.Context, content.Kind, int64, []string) ([]provider.Offer, error) {
	return nil, nil
}

func (repository *memoryProviders) linkCount() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.links)
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// # Clock

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
