// Package database wraps the generated queries with a connection pool,
// schema bootstrapping and transactions.
package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL for the whole database.
func Schema() string {
	return schema
}

type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Database struct {
	Querier

	Pool Pool
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{
		Querier: New(pool),
		Pool:    pool,
	}
}

// EnsureSchema applies the schema when the users table is not detected.
func (db *Database) EnsureSchema(ctx context.Context) error {
	exists, err := db.CheckUsersTableExists(ctx)
	if err != nil {
		return fmt.Errorf("ensuring schema exists: %w", err)
	}

	if exists {
		return nil
	}

	if db.Pool == nil {
		return errors.New("no pool to apply schema with")
	}
	if _, err := db.Pool.Exec(ctx, Schema()); err != nil {
		return fmt.Errorf("applying database schema: %w", err)
	}

	return nil
}

// InTx runs fn inside a transaction. Without a pool, as in tests backed by
// a mock Querier, fn runs directly against the embedded Querier.
func (db *Database) InTx(ctx context.Context, fn func(q Querier) error) error {
	if db.Pool == nil {
		return fn(db.Querier)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
