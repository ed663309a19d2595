package storage

import (
	"context"
	"fmt"
)

// RunInTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back when fn fails or panics.
func RunInTx(ctx context.Context, store Store, fn func(tx Tx) error) (err error) {
	tx, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("storage: commit transaction: %w", cerr)
		}
	}()

	return fn(tx)
}
