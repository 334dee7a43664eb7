package postgres

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/ports"
)

// Transactor implements ports.DBTransactor on a pgx pool.
// The returned ports.Tx is a pgx.Tx; repositories unwrap it with pgxTx.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin starts a new database transaction.
func (t *Transactor) Begin(ctx context.Context) (ports.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}
