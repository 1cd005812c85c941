// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cinesync/internal/content"
	"github.com/taibuivan/cinesync/internal/platform/database/schema"
	"github.com/taibuivan/cinesync/internal/platform/dberr"
	"github.com/taibuivan/cinesync/internal/platform/postgres"
)

// builder emits $n placeholders for pgx.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresRepository implements [Repository] on the media schema.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) querier(context context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(context, repository.pool)
}

// # Upserts

/*
UpsertProviders writes providers by canonical id.

Description: A conflicting row is updated only when a mutable field differs
or new regions arrive; regions are unioned, never replaced. RETURNING
(xmax = 0) tells an insert from an update, and an unchanged row returns
nothing.

Parameters:
  - context: context.Context (may carry a transaction)
  - providers: []Provider

Returns:
  - UpsertCounts: created and updated rows
  - error: dberr-wrapped failure
*/
func (repository *PostgresRepository) UpsertProviders(context context.Context, providers []Provider) (UpsertCounts, error) {
	var counts UpsertCounts
	table := schema.MediaProvider

	conflict := fmt.Sprintf(`ON CONFLICT (%[1]s) DO UPDATE SET
		%[2]s = EXCLUDED.%[2]s, %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s,
		%[6]s = ARRAY(SELECT DISTINCT region FROM unnest(provider.%[6]s || EXCLUDED.%[6]s) AS region ORDER BY region),
		%[7]s = now()
	WHERE provider.%[2]s IS DISTINCT FROM EXCLUDED.%[2]s
	   OR provider.%[3]s IS DISTINCT FROM EXCLUDED.%[3]s
	   OR provider.%[4]s IS DISTINCT FROM EXCLUDED.%[4]s
	   OR provider.%[5]s IS DISTINCT FROM EXCLUDED.%[5]s
	   OR NOT provider.%[6]s @> EXCLUDED.%[6]s
	RETURNING (xmax = 0)`,
		table.ID, table.Name, table.LogoPath, table.Type, table.Active, table.Regions, table.UpdatedAt)

	for _, provider := range providers {
		regions := provider.Regions
		if regions == nil {
			regions = []string{}
		}

		query, args, err := builder.
			Insert(table.Table+" AS provider").
			Columns(table.Columns()...).
			Values(provider.ID, provider.ExternalID, provider.Name, provider.LogoPath,
				string(provider.Type), string(provider.SourceType), provider.Active, regions).
			Suffix(conflict).
			ToSql()
		if err != nil {
			return counts, fmt.Errorf("provider: build upsert: %w", err)
		}

		var inserted bool
		err = repository.querier(context).QueryRow(context, query, args...).Scan(&inserted)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			continue
		case err != nil:
			return counts, dberr.Wrap(err, "upsert_provider")
		case inserted:
			counts.Created++
		default:
			counts.Updated++
		}
	}

	return counts, nil
}

// UpsertLinks implements [Repository]. Unchanged links are not rewritten.
func (repository *PostgresRepository) UpsertLinks(context context.Context, links []Link) error {
	table := schema.MediaProviderLink

	conflict := fmt.Sprintf(`ON CONFLICT (%[1]s) DO UPDATE SET
		%[2]s = EXCLUDED.%[2]s, %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s,
		%[6]s = now()
	WHERE link.%[2]s IS DISTINCT FROM EXCLUDED.%[2]s
	   OR link.%[3]s IS DISTINCT FROM EXCLUDED.%[3]s
	   OR link.%[4]s IS DISTINCT FROM EXCLUDED.%[4]s
	   OR link.%[5]s IS DISTINCT FROM EXCLUDED.%[5]s`,
		strings.Join(table.Key(), ", "),
		table.DeepLink, table.Quality, table.DisplayPriority, table.SourceType, table.UpdatedAt)

	for _, link := range links {
		query, args, err := builder.
			Insert(table.Table+" AS link").
			Columns(append(table.Key(), table.DeepLink, table.Quality, table.DisplayPriority, table.SourceType)...).
			Values(link.ContentID, string(link.ContentKind), link.ProviderID, link.Country, string(link.Monetization),
				link.DeepLink, link.Quality, link.DisplayPriority, string(link.SourceType)).
			Suffix(conflict).
			ToSql()
		if err != nil {
			return fmt.Errorf("provider: build link upsert: %w", err)
		}

		if _, err := repository.querier(context).Exec(context, query, args...); err != nil {
			return dberr.Wrap(err, "upsert_provider_link")
		}
	}

	return nil
}

// # Reads

func (repository *PostgresRepository) selectProviders() squirrel.SelectBuilder {
	return builder.Select(schema.MediaProvider.Columns()...).From(schema.MediaProvider.Table)
}

func scanProviders(rows pgx.Rows) ([]Provider, error) {
	defer rows.Close()

	providers := make([]Provider, 0)
	for rows.Next() {
		var provider Provider
		if err := rows.Scan(&provider.ID, &provider.ExternalID, &provider.Name, &provider.LogoPath,
			&provider.Type, &provider.SourceType, &provider.Active, &provider.Regions); err != nil {
			return nil, dberr.Wrap(err, "scan_provider")
		}
		providers = append(providers, provider)
	}

	return providers, dberr.Wrap(rows.Err(), "iterate_providers")
}

// ListAll implements [Repository].
func (repository *PostgresRepository) ListAll(context context.Context) ([]Provider, error) {
	query, args, err := repository.selectProviders().OrderBy(schema.MediaProvider.ID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("provider: build list: %w", err)
	}

	rows, err := repository.querier(context).Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_all_providers")
	}
	return scanProviders(rows)
}

// List implements [Repository]. It returns one page plus the filtered total.
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]Provider, int, error) {
	table := schema.MediaProvider

	conditions := squirrel.And{}
	if filter.Type != "" {
		conditions = append(conditions, squirrel.Eq{table.Type: string(filter.Type)})
	}
	if filter.SourceType != "" {
		conditions = append(conditions, squirrel.Eq{table.SourceType: string(filter.SourceType)})
	}

	countQuery, countArgs, err := builder.Select("count(*)").From(table.Table).Where(conditions).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("provider: build count: %w", err)
	}

	var total int
	if err := repository.querier(context).QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_providers")
	}

	query, args, err := repository.selectProviders().
		Where(conditions).
		OrderBy(table.Name, table.ID).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("provider: build list: %w", err)
	}

	rows, err := repository.querier(context).Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_providers")
	}

	providers, err := scanProviders(rows)
	return providers, total, err
}

/*
WhereToWatch lists the distribution offers of one item.

Description: Production-feed links and inactive providers are excluded. An
empty countries list means every country.
*/
func (repository *PostgresRepository) WhereToWatch(context context.Context, kind content.Kind, contentID int64, countries []string) ([]Offer, error) {
	link, provider := schema.MediaProviderLink, schema.MediaProvider

	statement := builder.
		Select(
			"p."+provider.ID, "p."+provider.Name, "p."+provider.LogoPath, "p."+provider.Type,
			"l."+link.Country, "l."+link.Monetization, "l."+link.DeepLink, "l."+link.Quality, "l."+link.DisplayPriority,
		).
		From(link.Table+" l").
		Join(fmt.Sprintf("%s p ON p.%s = l.%s", provider.Table, provider.ID, link.ProviderID)).
		Where(squirrel.Eq{
			"l." + link.ContentKind: string(kind),
			"l." + link.ContentID:   contentID,
			"l." + link.SourceType:  string(SourceWatchProvider),
			"p." + provider.Active:  true,
		}).
		OrderBy("l."+link.Country, "l."+link.Monetization, "l."+link.DisplayPriority, "p."+provider.Name)

	if len(countries) > 0 {
		statement = statement.Where(squirrel.Eq{"l." + link.Country: countries})
	}

	query, args, err := statement.ToSql()
	if err != nil {
		return nil, fmt.Errorf("provider: build where to watch: %w", err)
	}

	rows, err := repository.querier(context).Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "where_to_watch")
	}
	defer rows.Close()

	offers := make([]Offer, 0)
	for rows.Next() {
		var offer Offer
		if err := rows.Scan(&offer.ProviderID, &offer.ProviderName, &offer.LogoPath, &offer.Type,
			&offer.Country, &offer.Monetization, &offer.DeepLink, &offer.Quality, &offer.DisplayPriority); err != nil {
			return nil, dberr.Wrap(err, "scan_offer")
		}
		offers = append(offers, offer)
	}

	return offers, dberr.Wrap(rows.Err(), "iterate_offers")
}

// # Reclassification Writes

// UpdateClassification implements [Repository].
func (repository *PostgresRepository) UpdateClassification(context context.Context, id string, providerType Type, active bool) error {
	table := schema.MediaProvider

	query, args, err := builder.Update(table.Table).
		Set(table.Type, string(providerType)).
		Set(table.Active, active).
		Set(table.UpdatedAt, squirrel.Expr("now()")).
		Where(squirrel.Eq{table.ID: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("provider: build classification update: %w", err)
	}

	tag, err := repository.querier(context).Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_provider_classification")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// DeleteLinks implements [Repository].
func (repository *PostgresRepository) DeleteLinks(context context.Context, providerIDs []string) (int64, error) {
	if len(providerIDs) == 0 {
		return 0, nil
	}

	query, args, err := builder.Delete(schema.MediaProviderLink.Table).
		Where(squirrel.Eq{schema.MediaProviderLink.ProviderID: providerIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("provider: build link delete: %w", err)
	}

	tag, err := repository.querier(context).Exec(context, query, args...)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_provider_links")
	}
	return tag.RowsAffected(), nil
}
