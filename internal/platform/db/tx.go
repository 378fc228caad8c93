package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/milletflow/milletflow/internal/shared"
)

// WithTx executes a function within a RepeatableRead transaction. Begin and
// commit failures are surfaced as shared.ErrStorageFailure; callback errors
// pass through unchanged so typed domain errors survive.
func WithTx(ctx context.Context, pool Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return shared.StorageFailure("platform/db: begin tx", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return shared.StorageFailure("platform/db: commit tx", err)
	}

	return nil
}
