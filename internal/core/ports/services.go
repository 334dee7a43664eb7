package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// Role distinguishes account holders from the administrator.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AdminSubject is the token subject used for the administrator.
const AdminSubject = "admin"

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string, role Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
	Role    Role
}

// AccountID parses the subject as an account ID. It fails for admin tokens.
func (c *TokenClaims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// IdempotencyCache stores responses keyed by the caller's Idempotency-Key.
type IdempotencyCache interface {
	// Get returns the stored response, or nil if none was stored.
	Get(ctx context.Context, key string) ([]byte, error)
	// Reserve claims key for an in-flight request. It returns false if another request holds it.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops the claim taken by Reserve.
	Release(ctx context.Context, key string) error
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// EventPublisher delivers committed ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// --- Service Ports (Business Logic) ---

// LedgerService applies user-initiated balance mutations.
type LedgerService interface {
	RecordDeposit(ctx context.Context, req DepositRequest) (*domain.Entry, error)
	Invest(ctx context.Context, req InvestRequest) (*domain.Account, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Account, error)
}

// DepositRequest holds input for recording a pending deposit.
type DepositRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Method      string
	EvidenceRef string
}

// InvestRequest holds input for an investment.
type InvestRequest struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// WithdrawRequest holds input for a withdrawal.
type WithdrawRequest struct {
	AccountID          uuid.UUID
	Amount             decimal.Decimal
	Method             string
	DestinationAddress string
}

// ApprovalGate settles pending entries on behalf of the administrator.
type ApprovalGate interface {
	ApproveDeposit(ctx context.Context, entryID uuid.UUID) (*domain.Account, error)
	RejectDeposit(ctx context.Context, entryID uuid.UUID) error
	SettleWithdrawal(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error)
}

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	AdminLogin(ctx context.Context, password string) (*LoginResponse, error)
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResponse holds the new account and a session token.
type RegisterResponse struct {
	Account *domain.Account
	Token   string
	Expiry  time.Time
}

// LoginResponse holds a session token. Account is nil for the administrator.
type LoginResponse struct {
	Account *domain.Account
	Token   string
	Expiry  time.Time
}

// DashboardService defines read-only projections for users and the administrator.
type DashboardService interface {
	UserDashboard(ctx context.Context, accountID uuid.UUID) (*UserDashboard, error)
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
}

// UserDashboard groups an account with its entries by kind.
type UserDashboard struct {
	Account     *domain.Account
	Deposits    []domain.Entry
	Withdrawals []domain.Entry
	Investments []domain.Entry
}

// PendingDeposit is a pending deposit joined with its owner.
type PendingDeposit struct {
	Entry   domain.Entry
	Account *domain.Account
}

// AdminDashboard lists every account and the deposits awaiting approval.
type AdminDashboard struct {
	Accounts           []domain.Account
	PendingDeposits    []PendingDeposit
	PendingWithdrawals []domain.Entry
}

// PaymentMethodService manages the published deposit methods.
type PaymentMethodService interface {
	Publish(ctx context.Context, req PaymentMethodRequest) (*domain.PaymentMethod, error)
	Current(ctx context.Context) (*domain.PaymentMethod, error)
	List(ctx context.Context) ([]domain.PaymentMethod, error)
}

// PaymentMethodRequest holds input for publishing a deposit method.
type PaymentMethodRequest struct {
	Name    string
	Address string
	QRRef   string
}

// AuditService records audit logs.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
