package service

import (
	"context"
	"fmt"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerService implements ports.LedgerService. Every balance change runs in
// one unit of work with the account row locked.
type LedgerService struct {
	accounts   ports.AccountRepository
	entries    ports.EntryRepository
	transactor ports.DBTransactor
	events     ports.EventPublisher
	policy     domain.Policy
	log        zerolog.Logger
	now        func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	accounts ports.AccountRepository,
	entries ports.EntryRepository,
	transactor ports.DBTransactor,
	events ports.EventPublisher,
	policy domain.Policy,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		accounts:   accounts,
		entries:    entries,
		transactor: transactor,
		events:     events,
		policy:     policy,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecordDeposit stores a pending deposit. The balance is untouched until an
// administrator approves it.
func (s *LedgerService) RecordDeposit(ctx context.Context, req ports.DepositRequest) (*domain.Entry, error) {
	if err := domain.ValidateMinimum(req.Amount, s.policy.MinDeposit); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := domain.RequireField("method", req.Method); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	account, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	entry := domain.NewDeposit(account.ID, req.Amount, req.Method, req.EvidenceRef, s.now())

	if err := s.inTx(ctx, func(tx ports.Tx) error {
		if err := s.entries.Create(ctx, tx, entry); err != nil {
			return apperror.InternalError(fmt.Errorf("create deposit: %w", err))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", entry.AccountID.String()).
		Str("entry_id", entry.ID.String()).
		Str("amount", entry.Amount.String()).
		Msg("deposit recorded")
	publish(ctx, s.events, s.log, domain.NewLedgerEvent(domain.EventDepositRecorded, entry, nil, entry.CreatedAt))

	return entry, nil
}

// Invest moves amount from the balance into the invested totals.
func (s *LedgerService) Invest(ctx context.Context, req ports.InvestRequest) (*domain.Account, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var (
		account *domain.Account
		entry   *domain.Entry
	)
	err := s.inTx(ctx, func(tx ports.Tx) error {
		var err error
		if account, err = s.lockFunded(ctx, tx, req.AccountID, req.Amount); err != nil {
			return err
		}

		now := s.now()
		account.DebitInvestment(req.Amount, now)
		entry = domain.NewInvestment(account.ID, req.Amount, now)

		return s.persist(ctx, tx, account, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("entry_id", entry.ID.String()).
		Str("amount", entry.Amount.String()).
		Msg("investment created")
	publish(ctx, s.events, s.log, domain.NewLedgerEvent(domain.EventInvestmentCreated, entry, account, entry.CreatedAt))

	return account, nil
}

// Withdraw debits amount at request time and records a pending withdrawal for payout.
func (s *LedgerService) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Account, error) {
	if err := domain.ValidateMinimum(req.Amount, s.policy.MinWithdraw); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := domain.RequireField("method", req.Method); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := domain.RequireField("address", req.DestinationAddress); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var (
		account *domain.Account
		entry   *domain.Entry
	)
	err := s.inTx(ctx, func(tx ports.Tx) error {
		var err error
		if account, err = s.lockFunded(ctx, tx, req.AccountID, req.Amount); err != nil {
			return err
		}

		now := s.now()
		account.DebitWithdrawal(req.Amount, now)
		entry = domain.NewWithdrawal(account.ID, req.Amount, req.Method, req.DestinationAddress, now)

		return s.persist(ctx, tx, account, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("entry_id", entry.ID.String()).
		Str("amount", entry.Amount.String()).
		Msg("withdrawal requested")
	publish(ctx, s.events, s.log, domain.NewLedgerEvent(domain.EventWithdrawalRequested, entry, account, entry.CreatedAt))

	return account, nil
}

// lockFunded locks the account and checks it covers the requested amount.
func (s *LedgerService) lockFunded(ctx context.Context, tx ports.Tx, id uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.accounts.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.CanCover(amount) {
		return nil, apperror.ErrInsufficientBalance()
	}
	return account, nil
}

func (s *LedgerService) persist(ctx context.Context, tx ports.Tx, account *domain.Account, entry *domain.Entry) error {
	if err := s.accounts.Update(ctx, tx, account); err != nil {
		return apperror.InternalError(fmt.Errorf("update account: %w", err))
	}
	if err := s.entries.Create(ctx, tx, entry); err != nil {
		return apperror.InternalError(fmt.Errorf("create entry: %w", err))
	}
	return nil
}

func (s *LedgerService) inTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	return runInTx(ctx, s.transactor, fn)
}
