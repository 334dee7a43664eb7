package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind tags the ledger entry variant.
type EntryKind string

const (
	EntryKindDeposit    EntryKind = "DEPOSIT"
	EntryKindWithdrawal EntryKind = "WITHDRAWAL"
	EntryKindInvestment EntryKind = "INVESTMENT"
)

// EntryStatus represents the lifecycle state of a ledger entry.
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "PENDING"
	EntryStatusSettled  EntryStatus = "SETTLED"
	EntryStatusRejected EntryStatus = "REJECTED"
)

// ErrEntryNotPending is returned by Transition when the entry already left PENDING.
var ErrEntryNotPending = errors.New("entry is not pending")

// ErrInvalidTransition is returned when the target status is not terminal.
var ErrInvalidTransition = errors.New("invalid status transition")

// DepositDetails is the payload of a DEPOSIT entry.
type DepositDetails struct {
	Method      string `json:"method"`
	EvidenceRef string `json:"evidence_ref,omitempty"`
}

// WithdrawalDetails is the payload of a WITHDRAWAL entry.
type WithdrawalDetails struct {
	Method             string `json:"method"`
	DestinationAddress string `json:"destination_address"`
}

// Entry is a ledger record owned by one account. Exactly one of Deposit or
// Withdrawal is set for the matching Kind; investments carry no payload.
type Entry struct {
	ID         uuid.UUID          `json:"id"`
	AccountID  uuid.UUID          `json:"account_id"`
	Kind       EntryKind          `json:"kind"`
	Amount     decimal.Decimal    `json:"amount"`
	Status     EntryStatus        `json:"status"`
	Deposit    *DepositDetails    `json:"deposit,omitempty"`
	Withdrawal *WithdrawalDetails `json:"withdrawal,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	SettledAt  *time.Time         `json:"settled_at,omitempty"`
}

// NewDeposit creates a pending deposit entry.
func NewDeposit(accountID uuid.UUID, amount decimal.Decimal, method, evidenceRef string, now time.Time) *Entry {
	return &Entry{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      EntryKindDeposit,
		Amount:    amount,
		Status:    EntryStatusPending,
		Deposit:   &DepositDetails{Method: method, EvidenceRef: evidenceRef},
		CreatedAt: now,
	}
}

// NewWithdrawal creates a pending withdrawal entry.
func NewWithdrawal(accountID uuid.UUID, amount decimal.Decimal, method, address string, now time.Time) *Entry {
	return &Entry{
		ID:         uuid.New(),
		AccountID:  accountID,
		Kind:       EntryKindWithdrawal,
		Amount:     amount,
		Status:     EntryStatusPending,
		Withdrawal: &WithdrawalDetails{Method: method, DestinationAddress: address},
		CreatedAt:  now,
	}
}

// NewInvestment creates an investment entry. Investments settle on creation.
func NewInvestment(accountID uuid.UUID, amount decimal.Decimal, now time.Time) *Entry {
	return &Entry{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      EntryKindInvestment,
		Amount:    amount,
		Status:    EntryStatusSettled,
		CreatedAt: now,
		SettledAt: &now,
	}
}

// IsPending returns true while no transition has been applied.
func (e *Entry) IsPending() bool {
	return e.Status == EntryStatusPending
}

// Transition moves a pending entry to a terminal status. It is the only way
// an entry's status changes, and it refuses to run twice.
func (e *Entry) Transition(to EntryStatus, now time.Time) error {
	if to != EntryStatusSettled && to != EntryStatusRejected {
		return ErrInvalidTransition
	}
	if !e.IsPending() {
		return ErrEntryNotPending
	}
	e.Status = to
	e.SettledAt = &now
	return nil
}

// Method returns the payment method of a deposit or withdrawal.
func (e *Entry) Method() string {
	switch {
	case e.Deposit != nil:
		return e.Deposit.Method
	case e.Withdrawal != nil:
		return e.Withdrawal.Method
	}
	return ""
}
