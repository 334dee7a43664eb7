package postgres

import (
	"context"
	"errors"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// PaymentMethodRepo implements ports.PaymentMethodRepository.
type PaymentMethodRepo struct {
	pool Pool
}

// NewPaymentMethodRepo creates a new PaymentMethodRepo.
func NewPaymentMethodRepo(pool Pool) *PaymentMethodRepo {
	return &PaymentMethodRepo{pool: pool}
}

// Replace deletes the published methods and inserts m in the same transaction.
func (r *PaymentMethodRepo) Replace(ctx context.Context, tx ports.Tx, m *domain.PaymentMethod) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}
	if _, err := ptx.Exec(ctx, `DELETE FROM payment_methods`); err != nil {
		return fmt.Errorf("delete payment methods: %w", err)
	}
	_, err = ptx.Exec(ctx,
		`INSERT INTO payment_methods (id, name, address, qr_ref, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Name, m.Address, m.QRRef, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

// Latest returns the most recently published method.
func (r *PaymentMethodRepo) Latest(ctx context.Context) (*domain.PaymentMethod, error) {
	m := &domain.PaymentMethod{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, address, qr_ref, created_at FROM payment_methods ORDER BY created_at DESC LIMIT 1`,
	).Scan(&m.ID, &m.Name, &m.Address, &m.QRRef, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest payment method: %w", err)
	}
	return m, nil
}

// List returns every published method, newest first.
func (r *PaymentMethodRepo) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, address, qr_ref, created_at FROM payment_methods ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.QRRef, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment method row: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment method rows: %w", err)
	}
	return methods, nil
}
