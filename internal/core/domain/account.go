package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a registered user's balance and lifetime totals.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	PasswordHash  string          `json:"-"` // Never expose
	Balance       decimal.Decimal `json:"balance"`
	TotalDeposit  decimal.Decimal `json:"total_deposit"`
	TotalWithdraw decimal.Decimal `json:"total_withdraw"`
	TotalInvest   decimal.Decimal `json:"total_invest"`
	CurrentInvest decimal.Decimal `json:"current_invest"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewAccount returns an account with every monetary field at zero.
func NewAccount(name, email, passwordHash string, now time.Time) *Account {
	return &Account{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		Balance:       decimal.Zero,
		TotalDeposit:  decimal.Zero,
		TotalWithdraw: decimal.Zero,
		TotalInvest:   decimal.Zero,
		CurrentInvest: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanCover reports whether the balance covers amount.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Credit applies an approved deposit.
func (a *Account) Credit(amount decimal.Decimal, now time.Time) {
	a.Balance = a.Balance.Add(amount)
	a.TotalDeposit = a.TotalDeposit.Add(amount)
	a.UpdatedAt = now
}

// DebitWithdrawal earmarks funds for a withdrawal. The caller must check CanCover first.
func (a *Account) DebitWithdrawal(amount decimal.Decimal, now time.Time) {
	a.Balance = a.Balance.Sub(amount)
	a.TotalWithdraw = a.TotalWithdraw.Add(amount)
	a.UpdatedAt = now
}

// DebitInvestment moves funds from the balance into the invested totals.
// The caller must check CanCover first.
func (a *Account) DebitInvestment(amount decimal.Decimal, now time.Time) {
	a.Balance = a.Balance.Sub(amount)
	a.TotalInvest = a.TotalInvest.Add(amount)
	a.CurrentInvest = a.CurrentInvest.Add(amount)
	a.UpdatedAt = now
}
