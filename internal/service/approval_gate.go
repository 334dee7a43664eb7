package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ApprovalGate implements ports.ApprovalGate. The entry row is locked before
// the account row, and the pending check is repeated under the lock.
type ApprovalGate struct {
	accounts   ports.AccountRepository
	entries    ports.EntryRepository
	transactor ports.DBTransactor
	events     ports.EventPublisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewApprovalGate creates a new ApprovalGate.
func NewApprovalGate(
	accounts ports.AccountRepository,
	entries ports.EntryRepository,
	transactor ports.DBTransactor,
	events ports.EventPublisher,
	log zerolog.Logger,
) *ApprovalGate {
	return &ApprovalGate{
		accounts:   accounts,
		entries:    entries,
		transactor: transactor,
		events:     events,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ApproveDeposit settles a pending deposit and credits its account.
func (g *ApprovalGate) ApproveDeposit(ctx context.Context, entryID uuid.UUID) (*domain.Account, error) {
	var (
		entry   *domain.Entry
		account *domain.Account
	)
	err := runInTx(ctx, g.transactor, func(tx ports.Tx) error {
		var err error
		now := g.now()
		if entry, err = g.transition(ctx, tx, entryID, domain.EntryKindDeposit, domain.EntryStatusSettled, now); err != nil {
			return err
		}

		account, err = g.accounts.GetByIDForUpdate(ctx, tx, entry.AccountID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock account: %w", err))
		}
		if account == nil {
			return apperror.ErrNotFound("Account")
		}
		account.Credit(entry.Amount, now)

		if err := g.entries.UpdateStatus(ctx, tx, entry); err != nil {
			return apperror.InternalError(fmt.Errorf("update entry: %w", err))
		}
		if err := g.accounts.Update(ctx, tx, account); err != nil {
			return apperror.InternalError(fmt.Errorf("update account: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("account_id", account.ID.String()).
		Str("entry_id", entry.ID.String()).
		Str("amount", entry.Amount.String()).
		Msg("deposit approved")
	publish(ctx, g.events, g.log, domain.NewLedgerEvent(domain.EventDepositApproved, entry, account, *entry.SettledAt))

	return account, nil
}

// RejectDeposit marks a pending deposit rejected. The balance is not touched.
func (g *ApprovalGate) RejectDeposit(ctx context.Context, entryID uuid.UUID) error {
	entry, err := g.settle(ctx, entryID, domain.EntryKindDeposit, domain.EntryStatusRejected)
	if err != nil {
		return err
	}

	g.log.Info().
		Str("account_id", entry.AccountID.String()).
		Str("entry_id", entry.ID.String()).
		Str("amount", entry.Amount.String()).
		Msg("deposit rejected")
	publish(ctx, g.events, g.log, domain.NewLedgerEvent(domain.EventDepositRejected, entry, nil, *entry.SettledAt))

	return nil
}

// SettleWithdrawal marks a pending withdrawal paid out. Funds left the
// balance when the withdrawal was requested.
func (g *ApprovalGate) SettleWithdrawal(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error) {
	entry, err := g.settle(ctx, entryID, domain.EntryKindWithdrawal, domain.EntryStatusSettled)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("account_id", entry.AccountID.String()).
		Str("entry_id", entry.ID.String()).
		Str("amount", entry.Amount.String()).
		Msg("withdrawal settled")
	publish(ctx, g.events, g.log, domain.NewLedgerEvent(domain.EventWithdrawalSettled, entry, nil, *entry.SettledAt))

	return entry, nil
}

// settle applies a status-only transition in its own unit of work.
func (g *ApprovalGate) settle(ctx context.Context, id uuid.UUID, kind domain.EntryKind, to domain.EntryStatus) (*domain.Entry, error) {
	var entry *domain.Entry
	err := runInTx(ctx, g.transactor, func(tx ports.Tx) error {
		var err error
		if entry, err = g.transition(ctx, tx, id, kind, to, g.now()); err != nil {
			return err
		}
		if err := g.entries.UpdateStatus(ctx, tx, entry); err != nil {
			return apperror.InternalError(fmt.Errorf("update entry: %w", err))
		}
		return nil
	})
	return entry, err
}

// transition locks the entry and moves it out of PENDING in memory.
func (g *ApprovalGate) transition(ctx context.Context, tx ports.Tx, id uuid.UUID, kind domain.EntryKind, to domain.EntryStatus, now time.Time) (*domain.Entry, error) {
	entry, err := g.entries.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock entry: %w", err))
	}
	if entry == nil || entry.Kind != kind {
		return nil, apperror.ErrNotFound(entityName(kind))
	}

	if err := entry.Transition(to, now); err != nil {
		if errors.Is(err, domain.ErrEntryNotPending) {
			return nil, apperror.ErrAlreadySettled()
		}
		return nil, apperror.InternalError(err)
	}
	return entry, nil
}

func entityName(kind domain.EntryKind) string {
	switch kind {
	case domain.EntryKindDeposit:
		return "Deposit"
	case domain.EntryKindWithdrawal:
		return "Withdrawal"
	default:
		return "Entry"
	}
}
