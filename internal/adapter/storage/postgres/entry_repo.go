package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `id, account_id, kind, amount, status, method, evidence_ref,
		destination_address, created_at, settled_at`

// EntryRepo implements ports.EntryRepository. Variant payloads are flattened
// into the method, evidence_ref and destination_address columns.
type EntryRepo struct {
	pool Pool
}

// NewEntryRepo creates a new EntryRepo.
func NewEntryRepo(pool Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction.
func (r *EntryRepo) Create(ctx context.Context, tx ports.Tx, e *domain.Entry) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}
	method, evidence, destination := flatten(e)
	query := `INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = ptx.Exec(ctx, query,
		e.ID, e.AccountID, e.Kind, e.Amount, e.Status,
		method, evidence, destination, e.CreatedAt, e.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID fetches an entry by UUID.
func (r *EntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1`
	return scanEntry(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches an entry with pessimistic locking.
// This MUST be called within a transaction.
func (r *EntryRepo) GetByIDForUpdate(ctx context.Context, tx ports.Tx, id uuid.UUID) (*domain.Entry, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = $1 FOR UPDATE`
	return scanEntry(ptx.QueryRow(ctx, query, id))
}

// UpdateStatus persists the status and settlement time of a locked entry.
func (r *EntryRepo) UpdateStatus(ctx context.Context, tx ports.Tx, e *domain.Entry) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE ledger_entries SET status = $1, settled_at = $2 WHERE id = $3`

	tag, err := ptx.Exec(ctx, query, e.Status, e.SettledAt, e.ID)
	if err != nil {
		return fmt.Errorf("update ledger entry status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry not found: %s", e.ID)
	}
	return nil
}

// ListByAccount returns an account's entries, newest first.
func (r *EntryRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE account_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, accountID)
}

// ListPending returns pending entries of one kind, oldest first.
func (r *EntryRepo) ListPending(ctx context.Context, kind domain.EntryKind) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE kind = $1 AND status = $2 ORDER BY created_at ASC`
	return r.list(ctx, query, kind, domain.EntryStatusPending)
}

func (r *EntryRepo) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	e := &domain.Entry{}
	var method, evidence, destination string
	err := row.Scan(
		&e.ID, &e.AccountID, &e.Kind, &e.Amount, &e.Status,
		&method, &evidence, &destination, &e.CreatedAt, &e.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}

	switch e.Kind {
	case domain.EntryKindDeposit:
		e.Deposit = &domain.DepositDetails{Method: method, EvidenceRef: evidence}
	case domain.EntryKindWithdrawal:
		e.Withdrawal = &domain.WithdrawalDetails{Method: method, DestinationAddress: destination}
	}
	return e, nil
}

func flatten(e *domain.Entry) (method, evidence, destination string) {
	if e.Deposit != nil {
		return e.Deposit.Method, e.Deposit.EvidenceRef, ""
	}
	if e.Withdrawal != nil {
		return e.Withdrawal.Method, "", e.Withdrawal.DestinationAddress
	}
	return "", "", ""
}
