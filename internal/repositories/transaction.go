package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"microblog/internal/interfaces"
	"microblog/internal/utils"
)

// beginTransaction begins a new database transaction on the pool.
func beginTransaction(ctx context.Context, pool interfaces.PgxPoolIface) (pgx.Tx, error) {
	utils.LogMessageWithFields(ctx, "debug", "Beginning transaction...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "error", "Error beginning transaction", err)
		return nil, errors.Wrap(err, "begin transaction")
	}
	return tx, nil
}

// rollbackTransaction rolls back the given transaction. A transaction that is already closed is not an error.
func rollbackTransaction(ctx context.Context, tx pgx.Tx) {
	utils.LogMessageWithFields(ctx, "debug", "Rolling back transaction...")

	// The request context may already be cancelled, the rollback must still reach the server.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return
		}
		utils.LogMessageWithFieldsAndError(ctx, "error", "Error rolling back transaction", err)
		return
	}
	utils.LogMessageWithFields(ctx, "debug", "Transaction rolled back")
}

// commitTransaction attempts to commit the given transaction.
func commitTransaction(ctx context.Context, tx pgx.Tx) error {
	utils.LogMessageWithFields(ctx, "debug", "Committing transaction...")

	if err := tx.Commit(ctx); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "error", "Error committing transaction", err)
		return errors.Wrap(err, "commit transaction")
	}

	utils.LogMessageWithFields(ctx, "debug", "Transaction committed")
	return nil
}
