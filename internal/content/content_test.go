// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/cinesync/internal/content"
)

func TestSlugFor(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		original string
		english  string
		want     string
	}{
		{"latin original", 603, "The Matrix", "The Matrix", "603-the-matrix"},
		{"accented original", 194, "Le Fabuleux Destin d'Amélie Poulain", "Amélie", "194-le-fabuleux-destin-d-amelie-poulain"},
		{"non latin falls back to english", 129, "千と千尋の神隠し", "Spirited Away", "129-spirited-away"},
		{"nothing usable", 42, "千と千尋", "", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, content.SlugFor(tt.id, tt.original, tt.english))
		})
	}
}

func TestSlugFor_IgnoresDisplayLanguage(t *testing.T) {
	// Only the English fallback may influence the suffix, never other locales.
	assert.Equal(t, content.SlugFor(603, "The Matrix", "The Matrix"), content.SlugFor(603, "The Matrix", "Matrix"))
}

func TestValidSlug(t *testing.T) {
	assert.True(t, content.ValidSlug(603, "603-the-matrix"))
	assert.False(t, content.ValidSlug(603, "603"))
	assert.False(t, content.ValidSlug(603, ""))
	assert.False(t, content.ValidSlug(603, "604-the-matrix"))
	assert.False(t, content.ValidSlug(603, "603-The Matrix"))
}

func TestKind(t *testing.T) {
	assert.True(t, content.KindMovie.Valid())
	assert.False(t, content.Kind("both").Valid())
	assert.Equal(t, "movies", content.KindMovie.Plural())
	assert.Equal(t, "series", content.KindSeries.Plural())
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, []string{"movie", "series"}, content.KindNames())
}
