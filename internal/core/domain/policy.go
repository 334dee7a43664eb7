package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Default policy minimums, in account currency units.
var (
	DefaultMinDeposit  = decimal.NewFromInt(100)
	DefaultMinWithdraw = decimal.NewFromInt(20000)
)

// MaxAmountScale is the number of decimal places money is stored with.
const MaxAmountScale = 2

// MaxAmount is the largest value a NUMERIC(20,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999999999.99")

var (
	// ErrAmountNotPositive is returned for zero or negative amounts.
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrAmountScale       = fmt.Errorf("amount must have at most %d decimal places", MaxAmountScale)
	ErrAmountTooLarge    = fmt.Errorf("amount must not exceed %s", MaxAmount.String())
)

// Policy holds the configurable ledger limits.
type Policy struct {
	MinDeposit  decimal.Decimal
	MinWithdraw decimal.Decimal
}

// DefaultPolicy returns the limits used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{MinDeposit: DefaultMinDeposit, MinWithdraw: DefaultMinWithdraw}
}

// Validate checks the policy itself is usable.
func (p Policy) Validate() error {
	if !p.MinDeposit.IsPositive() {
		return fmt.Errorf("min deposit must be positive, got %s", p.MinDeposit)
	}
	if !p.MinWithdraw.IsPositive() {
		return fmt.Errorf("min withdraw must be positive, got %s", p.MinWithdraw)
	}
	return nil
}

// ValidateAmount accepts strictly positive amounts that fit a NUMERIC(20,2) column.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if amount.Exponent() < -MaxAmountScale && !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return ErrAmountScale
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// ValidateMinimum rejects amounts below min. It implies ValidateAmount when min is positive.
func ValidateMinimum(amount, min decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount.LessThan(min) {
		return fmt.Errorf("amount must be at least %s", min.String())
	}
	return nil
}

// RequireField rejects blank string fields.
func RequireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
