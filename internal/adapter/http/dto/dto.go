package dto

import "github.com/shopspring/decimal"

// Amounts are accepted as JSON numbers or strings and always returned as strings.

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// AdminLoginRequest is the request body for administrator login.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// AuthResponse carries a session token. Account is omitted for the administrator.
type AuthResponse struct {
	Token   string           `json:"token"`
	Expiry  int64            `json:"expiry"` // Unix timestamp
	Account *AccountResponse `json:"account,omitempty"`
}

type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"money"`
	Method      string          `json:"method" binding:"required,max=50"`
	EvidenceRef string          `json:"evidence_ref" binding:"omitempty,max=255,safe_id"`
}

type InvestRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"money"`
}

type WithdrawRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"money"`
	Method  string          `json:"method" binding:"required,max=50"`
	Address string          `json:"address" binding:"required,max=255"`
}

// PaymentMethodRequest is the body the administrator posts to publish a deposit method.
type PaymentMethodRequest struct {
	Name    string `json:"name" binding:"required,max=50"`
	Address string `json:"address" binding:"required,max=255"`
	QRRef   string `json:"qr_ref" binding:"omitempty,max=512,safe_url|safe_id"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Balance       decimal.Decimal `json:"balance"`
	TotalDeposit  decimal.Decimal `json:"total_deposit"`
	TotalWithdraw decimal.Decimal `json:"total_withdraw"`
	TotalInvest   decimal.Decimal `json:"total_invest"`
	CurrentInvest decimal.Decimal `json:"current_invest"`
	CreatedAt     string          `json:"created_at"`
}

// EntryResponse flattens a ledger entry and its kind-specific payload.
type EntryResponse struct {
	ID                 string          `json:"id"`
	AccountID          string          `json:"account_id"`
	Kind               string          `json:"kind"`
	Amount             decimal.Decimal `json:"amount"`
	Status             string          `json:"status"`
	Method             string          `json:"method,omitempty"`
	EvidenceRef        string          `json:"evidence_ref,omitempty"`
	DestinationAddress string          `json:"destination_address,omitempty"`
	CreatedAt          string          `json:"created_at"`
	SettledAt          *string         `json:"settled_at,omitempty"`
}

type UserDashboardResponse struct {
	Account     AccountResponse `json:"account"`
	Deposits    []EntryResponse `json:"deposits"`
	Withdrawals []EntryResponse `json:"withdrawals"`
	Investments []EntryResponse `json:"investments"`
}

// AccountSummary identifies the owner of a pending deposit.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PendingDepositResponse struct {
	EntryResponse
	Account *AccountSummary `json:"account,omitempty"`
}

type AdminDashboardResponse struct {
	Accounts           []AccountResponse        `json:"accounts"`
	PendingDeposits    []PendingDepositResponse `json:"pending_deposits"`
	PendingWithdrawals []EntryResponse          `json:"pending_withdrawals"`
}

type PaymentMethodResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	QRRef     string `json:"qr_ref,omitempty"`
	CreatedAt string `json:"created_at"`
}
