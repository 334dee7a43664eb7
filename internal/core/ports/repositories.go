package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// ErrDuplicateKey is returned by Create when a unique field is already taken.
var ErrDuplicateKey = errors.New("duplicate key")

// Tx is a unit of work. Rows read with a ForUpdate method stay locked until
// Commit or Rollback. Rollback after Commit is a no-op.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBTransactor starts units of work on the configured storage backing.
type DBTransactor interface {
	Begin(ctx context.Context) (Tx, error)
}

// AccountRepository defines persistence operations for accounts.
// Getters return nil, nil when the account does not exist.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*domain.Account, error)
	Update(ctx context.Context, tx Tx, account *domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
}

// EntryRepository defines persistence operations for ledger entries.
// Getters return nil, nil when the entry does not exist.
type EntryRepository interface {
	Create(ctx context.Context, tx Tx, entry *domain.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*domain.Entry, error)
	UpdateStatus(ctx context.Context, tx Tx, entry *domain.Entry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error)
	ListPending(ctx context.Context, kind domain.EntryKind) ([]domain.Entry, error)
}

// PaymentMethodRepository stores the deposit methods published by the administrator.
type PaymentMethodRepository interface {
	// Replace removes every existing method and stores m.
	Replace(ctx context.Context, tx Tx, m *domain.PaymentMethod) error
	// Latest returns the most recent method, or nil if none was published.
	Latest(ctx context.Context) (*domain.PaymentMethod, error)
	List(ctx context.Context) ([]domain.PaymentMethod, error)
}

// AuditRepository persists audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
