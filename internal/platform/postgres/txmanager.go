// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// # Query Surface

// Querier is the common interface implemented by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(context context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// QuerierFromCtx returns the transaction stored in the context if present,
// otherwise the pool.
func QuerierFromCtx(context context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := context.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// # Transactions

// TxManager runs callbacks inside a database transaction carried by the context.
//
// Nested RunInTx calls reuse the outer transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

/*
RunInTx executes fn within a Read Committed transaction.

Description: Commits when fn returns nil, rolls back when it returns an error
or panics (the panic is re-raised after the rollback).

Parameters:
  - context: context.Context
  - fn: func(context.Context) error (receives a context carrying the tx)

Returns:
  - error: fn's error, or a begin/commit failure
*/
func (manager *TxManager) RunInTx(context context.Context, fn func(context.Context) error) (err error) {
	if _, nested := context.Value(txKey{}).(pgx.Tx); nested {
		return fn(context)
	}

	tx, err := manager.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback(context)
			panic(recovered)
		}
	}()

	if err := fn(withTx(context, tx)); err != nil {
		if rollbackErr := tx.Rollback(context); rollbackErr != nil {
			return fmt.Errorf("postgres: rollback failed: %w (original error: %v)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(context); err != nil {
		return fmt.Errorf("postgres: commit transaction: %w", err)
	}

	return nil
}

func withTx(parent context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(parent, txKey{}, tx)
}
