package service

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// runInTx runs fn in a unit of work and commits only if fn succeeds. Locks
// taken inside fn are released on every path.
func runInTx(ctx context.Context, transactor ports.DBTransactor, fn func(tx ports.Tx) error) error {
	tx, err := transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// publish sends ev after commit. A failed publish is logged and never undoes the mutation.
func publish(ctx context.Context, pub ports.EventPublisher, log zerolog.Logger, ev domain.LedgerEvent) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", string(ev.Type)).
			Str("entry_id", ev.EntryID.String()).
			Msg("failed to publish ledger event")
	}
}
