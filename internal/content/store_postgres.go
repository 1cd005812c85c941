// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cinesync/internal/platform/database/schema"
	"github.com/taibuivan/cinesync/internal/platform/dberr"
	"github.com/taibuivan/cinesync/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on the media schema.
type PostgresRepository struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool, tx *postgres.TxManager) *PostgresRepository {
	return &PostgresRepository{pool: pool, tx: tx}
}

func tableFor(kind Kind) (schema.MediaContentTable, error) {
	switch kind {
	case KindMovie:
		return schema.MediaMovie, nil
	case KindSeries:
		return schema.MediaSeries, nil
	}
	return schema.MediaContentTable{}, fmt.Errorf("content: unknown kind %q", kind)
}

// Find implements [Repository].
func (repository *PostgresRepository) Find(context context.Context, kind Kind, id int64) (*Item, error) {
	return repository.find(context, kind, id, false)
}

func (repository *PostgresRepository) find(context context.Context, kind Kind, id int64, forUpdate bool) (*Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		strings.Join(table.Columns(), ", "), table.CreatedAt, table.UpdatedAt,
		table.Table, table.ID)
	if forUpdate {
		query += " FOR UPDATE"
	}

	item := &Item{Kind: kind}
	err = postgres.QuerierFromCtx(context, repository.pool).QueryRow(context, query, id).Scan(
		&item.ID, &item.OriginalTitle, &item.OriginalLanguage, &item.Slug,
		&item.TitleTranslations, &item.OverviewTranslations, &item.TaglineTranslations, &item.Certifications,
		&item.Popularity, &item.VoteAverage, &item.VoteCount, &item.Status, &item.ReleaseDate,
		&item.PosterPath, &item.BackdropPath, &item.ProvidersUpdatedAt, &item.RatingsUpdatedAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_content")
	}

	return item, nil
}

/*
Save merges item into its stored row.

Description: Runs inside a transaction (reusing the caller's when present).
A missing row is inserted with ON CONFLICT (id) DO NOTHING; an existing row
is locked FOR UPDATE, merged with [Merge] and rewritten only if the merge
changed something. A concurrent insert that wins the race sends the call down
the merge path.

Parameters:
  - context: context.Context
  - item: *Item (fresh upstream data)

Returns:
  - *Item: the persisted record
  - SaveOutcome: created, updated or unchanged
  - error: dberr-wrapped failure
*/
func (repository *PostgresRepository) Save(ctx context.Context, item *Item) (*Item, SaveOutcome, error) {
	var (
		saved   *Item
		outcome SaveOutcome
	)

	err := repository.tx.RunInTx(ctx, func(txContext context.Context) error {
		stored, err := repository.find(txContext, item.Kind, item.ID, true)
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return err
		}

		if stored == nil {
			created, _ := Merge(nil, item)
			inserted, err := repository.insert(txContext, created)
			if err != nil {
				return err
			}
			if inserted {
				saved, outcome = created, OutcomeCreated
				return nil
			}

			// Lost the insert race; the winner's row is now visible.
			if stored, err = repository.find(txContext, item.Kind, item.ID, true); err != nil {
				return err
			}
		}

		merged, changed := Merge(stored, item)
		if !changed {
			saved, outcome = stored, OutcomeUnchanged
			return nil
		}

		if err := repository.update(txContext, merged); err != nil {
			return err
		}
		saved, outcome = merged, OutcomeUpdated
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return saved, outcome, nil
}

func (repository *PostgresRepository) insert(context context.Context, item *Item) (bool, error) {
	table, err := tableFor(item.Kind)
	if err != nil {
		return false, err
	}

	columns := table.Columns()
	placeholders := make([]string, len(columns))
	for index := range columns {
		placeholders[index] = fmt.Sprintf("$%d", index+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING`,
		table.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), table.ID)

	tag, err := postgres.QuerierFromCtx(context, repository.pool).Exec(context, query, values(item)...)
	if err != nil {
		return false, dberr.Wrap(err, "insert_content")
	}

	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) update(context context.Context, item *Item) error {
	table, err := tableFor(item.Kind)
	if err != nil {
		return err
	}

	columns := table.Columns()
	assignments := make([]string, 0, len(columns))
	for index, column := range columns[1:] {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, index+2))
	}
	assignments = append(assignments, table.UpdatedAt+" = now()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`,
		table.Table, strings.Join(assignments, ", "), table.ID)

	if _, err := postgres.QuerierFromCtx(context, repository.pool).Exec(context, query, values(item)...); err != nil {
		return dberr.Wrap(err, "update_content")
	}
	return nil
}

// DeleteAll implements [Repository]. Provider links of the kind go first.
func (repository *PostgresRepository) DeleteAll(ctx context.Context, kind Kind) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = repository.tx.RunInTx(ctx, func(txContext context.Context) error {
		querier := postgres.QuerierFromCtx(txContext, repository.pool)

		linkQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
			schema.MediaProviderLink.Table, schema.MediaProviderLink.ContentKind)
		if _, err := querier.Exec(txContext, linkQuery, string(kind)); err != nil {
			return dberr.Wrap(err, "delete_content_links")
		}

		tag, err := querier.Exec(txContext, fmt.Sprintf(`DELETE FROM %s`, table.Table))
		if err != nil {
			return dberr.Wrap(err, "delete_content")
		}
		deleted = tag.RowsAffected()
		return nil
	})

	return deleted, err
}

// values returns item's fields in [schema.MediaContentTable.Columns] order.
func values(item *Item) []any {
	return []any{
		item.ID, item.OriginalTitle, item.OriginalLanguage, item.Slug,
		nonNil(item.TitleTranslations), nonNil(item.OverviewTranslations),
		nonNil(item.TaglineTranslations), nonNil(item.Certifications),
		item.Popularity, item.VoteAverage, item.VoteCount, item.Status, item.ReleaseDate,
		item.PosterPath, item.BackdropPath, item.ProvidersUpdatedAt, item.RatingsUpdatedAt,
	}
}

func nonNil(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}
