package postgres

import (
	"context"
	"testing"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryCols() []string {
	return []string{"id", "account_id", "kind", "amount", "status", "method", "evidence_ref",
		"destination_address", "created_at", "settled_at"}
}

func entryRow(rows *pgxmock.Rows, e *domain.Entry) *pgxmock.Rows {
	method, evidence, destination := flatten(e)
	return rows.AddRow(
		e.ID, e.AccountID, e.Kind, e.Amount, e.Status,
		method, evidence, destination, e.CreatedAt, e.SettledAt,
	)
}

func testNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TestEntryRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewEntryRepo(mock)
	e := domain.NewDeposit(uuid.New(), decimal.NewFromInt(100), "BTC", "upload-1.png", testNow())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.AccountID, domain.EntryKindDeposit, pgxmock.AnyArg(), domain.EntryStatusPending,
			"BTC", "upload-1.png", "", e.CreatedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), tx, e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_GetByID_RebuildsPayload(t *testing.T) {
	tests := []struct {
		name  string
		entry *domain.Entry
		check func(t *testing.T, got *domain.Entry)
	}{
		{
			name:  "deposit",
			entry: domain.NewDeposit(uuid.New(), decimal.NewFromInt(100), "BTC", "ref", testNow()),
			check: func(t *testing.T, got *domain.Entry) {
				require.NotNil(t, got.Deposit)
				assert.Nil(t, got.Withdrawal)
				assert.Equal(t, "ref", got.Deposit.EvidenceRef)
			},
		},
		{
			name:  "withdrawal",
			entry: domain.NewWithdrawal(uuid.New(), decimal.NewFromInt(20000), "USDT", "0xabc", testNow()),
			check: func(t *testing.T, got *domain.Entry) {
				require.NotNil(t, got.Withdrawal)
				assert.Nil(t, got.Deposit)
				assert.Equal(t, "0xabc", got.Withdrawal.DestinationAddress)
			},
		},
		{
			name:  "investment",
			entry: domain.NewInvestment(uuid.New(), decimal.NewFromInt(200), testNow()),
			check: func(t *testing.T, got *domain.Entry) {
				assert.Nil(t, got.Deposit)
				assert.Nil(t, got.Withdrawal)
				assert.NotNil(t, got.SettledAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id").
				WithArgs(tt.entry.ID).
				WillReturnRows(entryRow(pgxmock.NewRows(entryCols()), tt.entry))

			got, err := NewEntryRepo(mock).GetByID(context.Background(), tt.entry.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.entry.Kind, got.Kind)
			assert.Equal(t, tt.entry.Status, got.Status)
			tt.check(t, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEntryRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(entryCols()))

	got, err := NewEntryRepo(mock).GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntryRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	e := domain.NewDeposit(uuid.New(), decimal.NewFromInt(100), "BTC", "", testNow())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id .+ FOR UPDATE").
		WithArgs(e.ID).
		WillReturnRows(entryRow(pgxmock.NewRows(entryCols()), e))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	got, err := NewEntryRepo(mock).GetByIDForUpdate(context.Background(), tx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsPending())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	e := domain.NewDeposit(uuid.New(), decimal.NewFromInt(100), "BTC", "", testNow())
	require.NoError(t, e.Transition(domain.EntryStatusSettled, testNow()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ledger_entries SET status").
		WithArgs(domain.EntryStatusSettled, pgxmock.AnyArg(), e.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, NewEntryRepo(mock).UpdateStatus(context.Background(), tx, e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ledger_entries SET status").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	e := domain.NewDeposit(uuid.New(), decimal.NewFromInt(100), "BTC", "", testNow())
	err = NewEntryRepo(mock).UpdateStatus(context.Background(), tx, e)
	assert.ErrorContains(t, err, "ledger entry not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	accountID := uuid.New()
	dep := domain.NewDeposit(accountID, decimal.NewFromInt(100), "BTC", "", testNow())
	inv := domain.NewInvestment(accountID, decimal.NewFromInt(50), testNow())

	rows := entryRow(entryRow(pgxmock.NewRows(entryCols()), dep), inv)
	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE account_id").
		WithArgs(accountID).
		WillReturnRows(rows)

	got, err := NewEntryRepo(mock).ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EntryKindDeposit, got[0].Kind)
	assert.Equal(t, domain.EntryKindInvestment, got[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_ListPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dep := domain.NewDeposit(uuid.New(), decimal.NewFromInt(100), "BTC", "", testNow())

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE kind .+ AND status").
		WithArgs(domain.EntryKindDeposit, domain.EntryStatusPending).
		WillReturnRows(entryRow(pgxmock.NewRows(entryCols()), dep))

	got, err := NewEntryRepo(mock).ListPending(context.Background(), domain.EntryKindDeposit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dep.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
