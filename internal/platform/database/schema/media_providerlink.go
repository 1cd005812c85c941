// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "github.com/taibuivan/cinesync/internal/platform/constants"

// MediaProviderLinkTable represents the 'media.providerlink' table
type MediaProviderLinkTable struct {
	Table           string
	ID              string
	ContentID       string
	ContentKind     string
	ProviderID      string
	Country         string
	Monetization    string
	DeepLink        string
	Quality         string
	DisplayPriority string
	SourceType      string
	CreatedAt       string
	UpdatedAt       string
}

// MediaProviderLink is the schema definition for media.providerlink
var MediaProviderLink = MediaProviderLinkTable{
	Table:           constants.SchemaMedia + ".providerlink",
	ID:              "id",
	ContentID:       "contentid",
	ContentKind:     "contentkind",
	ProviderID:      "providerid",
	Country:         "country",
	Monetization:    "monetization",
	DeepLink:        "deeplink",
	Quality:         "quality",
	DisplayPriority: "displaypriority",
	SourceType:      "sourcetype",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Key lists the five columns of the link's unique key.
func (t MediaProviderLinkTable) Key() []string {
	return []string{t.ContentID, t.ContentKind, t.ProviderID, t.Country, t.Monetization}
}
