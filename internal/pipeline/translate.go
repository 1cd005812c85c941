// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/constants"
)

// DetailSource returns the detail document of an item in one language.
// *catalog.Client satisfies it.
type DetailSource interface {
	Details(context context.Context, kind content.Kind, id int64, language string) (*catalog.Details, error)
}

// Bundle holds the localized text groups of one item.
type Bundle struct {
	Title    content.Translations
	Overview content.Translations
	Tagline  content.Translations
}

// LanguageFailure is a language that could not be fetched.
type LanguageFailure struct {
	Language string
	Err      error
}

// Aggregator fans out per-language detail fetches and merges the results.
type Aggregator struct {
	source      DetailSource
	concurrency int
	logger      *slog.Logger
}

// NewAggregator creates a new Aggregator. Concurrency below one is one.
func NewAggregator(source DetailSource, concurrency int, logger *slog.Logger) *Aggregator {
	return &Aggregator{source: source, concurrency: max(concurrency, 1), logger: logger}
}

/*
Translate fetches the item once per language and builds the translation maps.

Description: Languages are normalized first and always include the baseline
language. A failing language is logged and reported but never aborts the
others; blank fields are left out of the maps.

Parameters:
  - context: context.Context
  - kind: content.Kind
  - id: int64
  - languages: []string

Returns:
  - Bundle: non-nil maps, possibly empty
  - []LanguageFailure: languages that failed, in request order
*/
func (aggregator *Aggregator) Translate(context context.Context, kind content.Kind, id int64, languages []string) (Bundle, []LanguageFailure) {
	languages = NormalizeLanguages(languages)

	documents := make([]*catalog.Details, len(languages))
	errs := make([]error, len(languages))

	group := errgroup.Group{}
	group.SetLimit(aggregator.concurrency)

	for index, language := range languages {
		group.Go(func() error {
			documents[index], errs[index] = aggregator.source.Details(context, kind, id, language)
			return nil
		})
	}
	_ = group.Wait()

	bundle := Bundle{Title: content.Translations{}, Overview: content.Translations{}, Tagline: content.Translations{}}
	var failures []LanguageFailure

	for index, language := range languages {
		if errs[index] != nil {
			aggregator.logger.WarnContext(context, "translation_fetch_failed",
				slog.String("kind", string(kind)),
				slog.Int64("content_id", id),
				slog.String("language", language),
				slog.Any("error", errs[index]),
			)
			failures = append(failures, LanguageFailure{Language: language, Err: errs[index]})
			continue
		}

		document := documents[index]
		put(bundle.Title, language, document.DisplayTitle())
		put(bundle.Overview, language, document.Overview)
		put(bundle.Tagline, language, document.Tagline)
	}

	return bundle, failures
}

func put(translations content.Translations, language, value string) {
	if value = strings.TrimSpace(value); value != "" {
		translations[language] = value
	}
}

// NormalizeLanguages trims, case-folds and dedupes codes and appends the
// baseline language when missing. Order of first appearance is kept.
func NormalizeLanguages(languages []string) []string {
	normalized := make([]string, 0, len(languages)+1)
	for _, language := range languages {
		language = canonicalLanguage(language)
		if language != "" && !slices.Contains(normalized, language) {
			normalized = append(normalized, language)
		}
	}

	if !slices.Contains(normalized, constants.BaselineLanguage) {
		normalized = append(normalized, constants.BaselineLanguage)
	}
	return normalized
}

// canonicalLanguage lowercases the primary subtag and uppercases a two-letter
// region, so "PT-br" becomes "pt-BR" as the catalog expects. Other subtags
// keep their case.
func canonicalLanguage(code string) string {
	primary, rest, found := strings.Cut(strings.TrimSpace(code), "-")
	primary = strings.ToLower(primary)
	if !found {
		return primary
	}
	if len(rest) == 2 {
		rest = strings.ToUpper(rest)
	}
	return primary + "-" + rest
}
