// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"log/slog"
)

// Transactor runs fn atomically. *postgres.TxManager satisfies it.
type Transactor interface {
	RunInTx(context context.Context, fn func(context.Context) error) error
}

// ReclassifyResult summarizes one reclassification pass.
type ReclassifyResult struct {
	Scanned      int      `json:"scanned"`
	Changed      []string `json:"changed"`
	Deactivated  []string `json:"deactivated"`
	LinksDeleted int64    `json:"links_deleted"`
}

// Reclassifier re-applies the current rule table to stored providers.
type Reclassifier struct {
	repository Repository
	tx         Transactor
	rules      *RuleSet
	logger     *slog.Logger
}

// NewReclassifier creates a new Reclassifier.
func NewReclassifier(repository Repository, tx Transactor, rules *RuleSet, logger *slog.Logger) *Reclassifier {
	return &Reclassifier{repository: repository, tx: tx, rules: rules, logger: logger}
}

/*
Reclassify evaluates every stored provider against the rule table.

Description: Only rows whose type or active flag changes are written. Links
are deleted only for providers that went from active to inactive; every other
link is left in place. A second pass with the same table changes nothing.

Parameters:
  - context: context.Context

Returns:
  - *ReclassifyResult: changed and deactivated ids, deleted link count
  - error: repository failure (the whole pass is rolled back)
*/
func (reclassifier *Reclassifier) Reclassify(ctx context.Context) (*ReclassifyResult, error) {
	result := &ReclassifyResult{Changed: []string{}, Deactivated: []string{}}

	err := reclassifier.tx.RunInTx(ctx, func(txContext context.Context) error {
		providers, err := reclassifier.repository.ListAll(txContext)
		if err != nil {
			return err
		}
		result.Scanned = len(providers)

		for _, stored := range providers {
			classification := reclassifier.rules.Classify(Raw{
				ExternalID: stored.ExternalID,
				Name:       stored.Name,
				Source:     stored.SourceType,
			})
			if classification.Type == stored.Type && classification.Active == stored.Active {
				continue
			}

			if err := reclassifier.repository.UpdateClassification(txContext, stored.ID, classification.Type, classification.Active); err != nil {
				return err
			}
			result.Changed = append(result.Changed, stored.ID)

			if stored.Active && !classification.Active {
				result.Deactivated = append(result.Deactivated, stored.ID)
			}

			reclassifier.logger.Info("provider_reclassified",
				slog.String("provider_id", stored.ID),
				slog.String("from_type", string(stored.Type)),
				slog.String("to_type", string(classification.Type)),
				slog.Bool("active", classification.Active),
				slog.String("rule", classification.Rule),
			)
		}

		deleted, err := reclassifier.repository.DeleteLinks(txContext, result.Deactivated)
		if err != nil {
			return err
		}
		result.LinksDeleted = deleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
