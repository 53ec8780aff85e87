package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithSnapshot runs fn inside a read-only REPEATABLE READ transaction so that
// several queries observe the same committed state. The transaction is always
// rolled back; fn must not write.
func (db *DB) WithSnapshot(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	return fn(tx)
}
