package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTransaction runs fn inside a read-committed transaction,
// committing on success and rolling back on any error. The conditional
// UPDATEs in the callers rely on this: no partial state escapes.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// WithSerializationRetry runs fn through WithTransaction and retries it
// exactly once if the failure is a serialization conflict or deadlock.
// Business-rule failures pass straight through.
func WithSerializationRetry(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	err := WithTransaction(ctx, db, fn)
	if err == nil || !IsRetryable(err) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return WithTransaction(ctx, db, fn)
}
