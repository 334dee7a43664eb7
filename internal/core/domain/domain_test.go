package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNewAccount_ZeroTotals(t *testing.T) {
	a := NewAccount("Ada", "ada@example.com", "hash", time.Now())

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.True(t, a.Balance.IsZero())
	assert.True(t, a.TotalDeposit.IsZero())
	assert.True(t, a.TotalWithdraw.IsZero())
	assert.True(t, a.TotalInvest.IsZero())
	assert.True(t, a.CurrentInvest.IsZero())
}

func TestAccount_Mutations(t *testing.T) {
	now := time.Now()
	a := NewAccount("Ada", "ada@example.com", "hash", now)

	a.Credit(d(500), now)
	assert.True(t, a.Balance.Equal(d(500)))
	assert.True(t, a.TotalDeposit.Equal(d(500)))

	require.True(t, a.CanCover(d(200)))
	a.DebitInvestment(d(200), now)
	assert.True(t, a.Balance.Equal(d(300)))
	assert.True(t, a.TotalInvest.Equal(d(200)))
	assert.True(t, a.CurrentInvest.Equal(d(200)))

	assert.False(t, a.CanCover(d(301)))
	a.DebitWithdrawal(d(300), now)
	assert.True(t, a.Balance.IsZero())
	assert.True(t, a.TotalWithdraw.Equal(d(300)))
}

func TestNewEntries_Variants(t *testing.T) {
	now := time.Now()
	accountID := uuid.New()

	dep := NewDeposit(accountID, d(100), "BTC", "upload-1.png", now)
	assert.Equal(t, EntryKindDeposit, dep.Kind)
	assert.Equal(t, EntryStatusPending, dep.Status)
	require.NotNil(t, dep.Deposit)
	assert.Nil(t, dep.Withdrawal)
	assert.Equal(t, "BTC", dep.Method())
	assert.Nil(t, dep.SettledAt)

	wd := NewWithdrawal(accountID, d(300), "USDT", "0xabc", now)
	assert.Equal(t, EntryKindWithdrawal, wd.Kind)
	assert.Equal(t, EntryStatusPending, wd.Status)
	require.NotNil(t, wd.Withdrawal)
	assert.Equal(t, "0xabc", wd.Withdrawal.DestinationAddress)

	inv := NewInvestment(accountID, d(200), now)
	assert.Equal(t, EntryKindInvestment, inv.Kind)
	assert.Equal(t, EntryStatusSettled, inv.Status)
	assert.NotNil(t, inv.SettledAt)
	assert.Empty(t, inv.Method())
}

func TestEntry_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    EntryStatus
		to      EntryStatus
		wantErr error
	}{
		{"pending to settled", EntryStatusPending, EntryStatusSettled, nil},
		{"pending to rejected", EntryStatusPending, EntryStatusRejected, nil},
		{"settled to rejected", EntryStatusSettled, EntryStatusRejected, ErrEntryNotPending},
		{"settled to settled", EntryStatusSettled, EntryStatusSettled, ErrEntryNotPending},
		{"rejected to settled", EntryStatusRejected, EntryStatusSettled, ErrEntryNotPending},
		{"pending to pending", EntryStatusPending, EntryStatusPending, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Status: tt.from}
			err := e.Transition(tt.to, time.Now())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, e.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, e.Status)
			assert.NotNil(t, e.SettledAt)
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{MinDeposit: d(0), MinWithdraw: d(1)}.Validate())
	assert.Error(t, Policy{MinDeposit: d(1), MinWithdraw: d(-5)}.Validate())
}

func TestValidateMinimum(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		min     decimal.Decimal
		wantErr bool
	}{
		{"equal to minimum", d(100), d(100), false},
		{"above minimum", decimal.RequireFromString("100.01"), d(100), false},
		{"below minimum", decimal.RequireFromString("99.99"), d(100), true},
		{"zero", d(0), d(100), true},
		{"negative", d(-100), d(100), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMinimum(tt.amount, tt.min)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"whole", "500", nil},
		{"cents", "100.25", nil},
		{"trailing zeros", "100.100", nil},
		{"largest", "999999999999999999.99", nil},
		{"zero", "0", ErrAmountNotPositive},
		{"negative", "-1", ErrAmountNotPositive},
		{"sub cent", "0.001", ErrAmountScale},
		{"sub cent above minimum", "100.005", ErrAmountScale},
		{"above column range", "1000000000000000000", ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMinimum_RejectsSubCent(t *testing.T) {
	assert.ErrorIs(t, ValidateMinimum(decimal.RequireFromString("100.005"), d(100)), ErrAmountScale)
}

func TestRequireField(t *testing.T) {
	assert.NoError(t, RequireField("method", "BTC"))
	assert.EqualError(t, RequireField("method", "   "), "method is required")
}

func TestNewLedgerEvent(t *testing.T) {
	now := time.Now()
	a := NewAccount("Ada", "ada@example.com", "hash", now)
	a.Credit(d(100), now)
	e := NewDeposit(a.ID, d(100), "BTC", "", now)

	ev := NewLedgerEvent(EventDepositApproved, e, a, now)
	assert.Equal(t, e.ID, ev.EntryID)
	assert.Equal(t, a.ID, ev.AccountID)
	require.NotNil(t, ev.Balance)
	assert.True(t, ev.Balance.Equal(d(100)))

	ev = NewLedgerEvent(EventDepositRecorded, e, nil, now)
	assert.Nil(t, ev.Balance)
}
