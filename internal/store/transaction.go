package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/lessondeck/internal/platform/logger"
	"github.com/phrazzld/lessondeck/internal/redact"
)

// TxFn runs inside a transaction opened by RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction commits when fn returns nil and rolls back otherwise.
// A panic in fn rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) error {
	log := logger.FromContextOrDefault(ctx, nil).With("component", "store_tx")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin transaction failed", "error", redact.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed", "error", redact.Error(rbErr), "panic", p)
		}
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback failed",
				"error", redact.Error(err),
				"rollback_error", redact.Error(rbErr))
			return fmt.Errorf("rollback: %v (after: %w)", rbErr, err)
		}
		log.Debug("transaction rolled back", "error", redact.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", "error", redact.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
