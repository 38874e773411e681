package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx executes fn within a transaction using the ReadCommitted isolation level.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// WithSavepoint executes fn inside a nested transaction (savepoint) on tx.
// An error from fn rolls the savepoint back and leaves the outer transaction
// usable.
func WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	nested, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("platform/db: begin savepoint: %w", err)
	}

	if err := fn(nested); err != nil {
		_ = nested.Rollback(ctx)
		return err
	}

	if err := nested.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: release savepoint: %w", err)
	}

	return nil
}
