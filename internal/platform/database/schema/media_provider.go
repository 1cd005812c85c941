// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "github.com/taibuivan/cinesync/internal/platform/constants"

// MediaProviderTable represents the 'media.provider' table
type MediaProviderTable struct {
	Table      string
	ID         string
	ExternalID string
	Name       string
	LogoPath   string
	Type       string
	SourceType string
	Active     string
	Regions    string
	CreatedAt  string
	UpdatedAt  string
}

// MediaProvider is the schema definition for media.provider
var MediaProvider = MediaProviderTable{
	Table:      constants.SchemaMedia + ".provider",
	ID:         "id",
	ExternalID: "externalid",
	Name:       "name",
	LogoPath:   "logopath",
	Type:       "type",
	SourceType: "sourcetype",
	Active:     "active",
	Regions:    "regions",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t MediaProviderTable) Columns() []string {
	return []string{t.ID, t.ExternalID, t.Name, t.LogoPath, t.Type, t.SourceType, t.Active, t.Regions}
}
