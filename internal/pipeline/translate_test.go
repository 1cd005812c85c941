// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/cinesync/internal/catalog"
	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/pipeline"
	"github.com/taibuivan/cinesync/internal/platform/logging"
)

// languageSource answers from a fixed table and fails for listed languages.
type languageSource struct {
	mu        sync.Mutex
	titles    map[string]string
	failing   map[string]bool
	requested []string
}

func (source *languageSource) Details(_ context.Context, _ content.Kind, id int64, language string) (*catalog.Details, error) {
	source.mu.Lock()
	source.requested = append(source.requested, language)
	source.mu.Unlock()

	if source.failing[language] {
		return nil, errors.New("upstream unavailable")
	}
	return &catalog.Details{ID: id, Title: source.titles[language], Tagline: "  "}, nil
}

func TestAggregator_PartialCoverage(t *testing.T) {
	source := &languageSource{titles: map[string]string{"en": "The Matrix", "tr": "Matrix"}}
	aggregator := pipeline.NewAggregator(source, 4, logging.Discard())

	languages := []string{"en", "tr", "de", "fr", "es", "it", "pt", "ru", "ja", "ko",
		"zh", "ar", "nl", "pl", "sv", "da", "fi", "no", "cs", "hu"}
	bundle, failures := aggregator.Translate(context.Background(), content.KindMovie, 603, languages)

	assert.Empty(t, failures)
	assert.Equal(t, content.Translations{"en": "The Matrix", "tr": "Matrix"}, bundle.Title)
	assert.Empty(t, bundle.Tagline)
	assert.NotNil(t, bundle.Tagline)
	assert.Len(t, source.requested, 20)
}

func TestAggregator_FailureDoesNotAbortOthers(t *testing.T) {
	source := &languageSource{
		titles:  map[string]string{"en": "The Matrix", "tr": "Matrix", "de": "Matrix DE"},
		failing: map[string]bool{"tr": true},
	}
	aggregator := pipeline.NewAggregator(source, 1, logging.Discard())

	bundle, failures := aggregator.Translate(context.Background(), content.KindMovie, 603, []string{"tr", "de"})

	assert.Equal(t, content.Translations{"en": "The Matrix", "de": "Matrix DE"}, bundle.Title)
	if assert.Len(t, failures, 1) {
		assert.Equal(t, "tr", failures[0].Language)
		assert.Error(t, failures[0].Err)
	}
}

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"adds baseline", []string{"tr"}, []string{"tr", "en"}},
		{"keeps order", []string{"en", "tr"}, []string{"en", "tr"}},
		{"trims and dedupes", []string{" TR ", "tr", "", "De"}, []string{"tr", "de", "en"}},
		{"empty", nil, []string{"en"}},
		{"keeps region uppercase", []string{"pt-BR", "es-419"}, []string{"pt-BR", "es-419", "en"}},
		{"canonicalizes region case", []string{"PT-br", "pt-BR", "zh-Hant"}, []string{"pt-BR", "zh-Hant", "en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.NormalizeLanguages(tt.input))
		})
	}
}
