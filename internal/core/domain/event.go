package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a committed ledger mutation.
type EventType string

const (
	EventDepositRecorded     EventType = "DEPOSIT_RECORDED"
	EventDepositApproved     EventType = "DEPOSIT_APPROVED"
	EventDepositRejected     EventType = "DEPOSIT_REJECTED"
	EventWithdrawalRequested EventType = "WITHDRAWAL_REQUESTED"
	EventWithdrawalSettled   EventType = "WITHDRAWAL_SETTLED"
	EventInvestmentCreated   EventType = "INVESTMENT_CREATED"
)

// LedgerEvent is published after a mutation commits.
type LedgerEvent struct {
	Type       EventType        `json:"type"`
	EntryID    uuid.UUID        `json:"entry_id"`
	AccountID  uuid.UUID        `json:"account_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Balance    *decimal.Decimal `json:"balance,omitempty"` // Balance after the mutation, when it changed
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewLedgerEvent builds an event for entry. account may be nil when the balance did not change.
func NewLedgerEvent(t EventType, entry *Entry, account *Account, now time.Time) LedgerEvent {
	ev := LedgerEvent{
		Type:       t,
		EntryID:    entry.ID,
		AccountID:  entry.AccountID,
		Amount:     entry.Amount,
		OccurredAt: now,
	}
	if account != nil {
		b := account.Balance
		ev.Balance = &b
	}
	return ev
}
