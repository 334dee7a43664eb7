package service

import (
	"context"
	"errors"
	"testing"

	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/stretchr/testify/require"
)

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, expectedCode, appErr.Code)
}

// fakeTx is a ports.Tx that records how it ended.
type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

var (
	_ ports.LedgerService        = (*LedgerService)(nil)
	_ ports.ApprovalGate         = (*ApprovalGate)(nil)
	_ ports.AuthService          = (*AuthService)(nil)
	_ ports.DashboardService     = (*DashboardService)(nil)
	_ ports.PaymentMethodService = (*PaymentMethodService)(nil)
	_ ports.AuditService         = (*AuditService)(nil)
	_ ports.HashService          = (*Argon2HashService)(nil)
	_ ports.TokenService         = (*JWTTokenService)(nil)
)
