package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAlreadyInTransaction is returned by WithTx when the store reports an
// in-flight transaction already: reentrant calls fail rather than nesting.
var ErrAlreadyInTransaction = errors.New("store: already in a transaction")

// TxFunc is the body run inside WithTx. fn is allowed to commit or roll
// back tx itself and begin a new one; if it does, WithTx detects the swap
// and applies its own commit or rollback to whichever transaction is live
// when fn returns.
type TxFunc func(tx *sql.Tx) (*sql.Tx, error)

// WithTx opens a transaction, runs fn, and commits on success or rolls back
// on failure. fn receives the open transaction and returns the transaction
// that should be finalized (ordinarily the same one it was given).
func (s *Store) WithTx(ctx context.Context, fn TxFunc) error {
	if !s.inTx.CompareAndSwap(false, true) {
		return ErrAlreadyInTransaction
	}
	defer s.inTx.Store(false)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	finalTx, fnErr := fn(tx)
	if finalTx == nil {
		finalTx = tx
	}
	if finalTx != tx {
		slog.Warn("store: transaction function replaced its transaction; finalizing the replacement",
			slog.Bool("committed_on_success", fnErr == nil))
	}

	if fnErr != nil {
		if rbErr := finalTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback also failed: %v)", fnErr, rbErr)
		}
		return fnErr
	}

	if err := finalTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// WithTxSimple adapts a fn that never swaps its transaction, the common
// case for every call site in this repository outside of tests exercising
// the Open Question resolution.
func (s *Store) WithTxSimple(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.WithTx(ctx, func(tx *sql.Tx) (*sql.Tx, error) {
		return tx, fn(tx)
	})
}
