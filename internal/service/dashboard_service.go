package service

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// DashboardService implements ports.DashboardService. It only reads.
type DashboardService struct {
	accounts ports.AccountRepository
	entries  ports.EntryRepository
}

func NewDashboardService(accounts ports.AccountRepository, entries ports.EntryRepository) *DashboardService {
	return &DashboardService{accounts: accounts, entries: entries}
}

// UserDashboard returns the account and its entries split by kind, newest first.
func (s *DashboardService) UserDashboard(ctx context.Context, accountID uuid.UUID) (*ports.UserDashboard, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	entries, err := s.entries.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list entries: %w", err))
	}

	dash := &ports.UserDashboard{
		Account:     account,
		Deposits:    []domain.Entry{},
		Withdrawals: []domain.Entry{},
		Investments: []domain.Entry{},
	}
	for _, e := range entries {
		switch e.Kind {
		case domain.EntryKindDeposit:
			dash.Deposits = append(dash.Deposits, e)
		case domain.EntryKindWithdrawal:
			dash.Withdrawals = append(dash.Withdrawals, e)
		case domain.EntryKindInvestment:
			dash.Investments = append(dash.Investments, e)
		}
	}
	return dash, nil
}

// AdminDashboard lists every account, pending deposits joined with their
// owner, and withdrawals awaiting payout.
func (s *DashboardService) AdminDashboard(ctx context.Context) (*ports.AdminDashboard, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	deposits, err := s.entries.ListPending(ctx, domain.EntryKindDeposit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending deposits: %w", err))
	}
	withdrawals, err := s.entries.ListPending(ctx, domain.EntryKindWithdrawal)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending withdrawals: %w", err))
	}

	byID := make(map[uuid.UUID]*domain.Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = &accounts[i]
	}

	pending := make([]ports.PendingDeposit, 0, len(deposits))
	for _, e := range deposits {
		pending = append(pending, ports.PendingDeposit{Entry: e, Account: byID[e.AccountID]})
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}
	if withdrawals == nil {
		withdrawals = []domain.Entry{}
	}
	return &ports.AdminDashboard{
		Accounts:           accounts,
		PendingDeposits:    pending,
		PendingWithdrawals: withdrawals,
	}, nil
}
