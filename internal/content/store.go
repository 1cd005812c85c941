// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import "context"

// SaveOutcome tells what a [Repository.Save] did to the stored row.
type SaveOutcome string

const (
	OutcomeCreated   SaveOutcome = "created"
	OutcomeUpdated   SaveOutcome = "updated"
	OutcomeUnchanged SaveOutcome = "unchanged"
)

// Repository persists content items.
type Repository interface {
	// Find returns dberr.ErrNotFound when the item does not exist.
	Find(context context.Context, kind Kind, id int64) (*Item, error)

	// Save merges item into the stored row with [Merge] and writes only on change.
	Save(context context.Context, item *Item) (*Item, SaveOutcome, error)

	// DeleteAll removes every item of a kind together with its provider links.
	DeleteAll(context context.Context, kind Kind) (int64, error)
}
