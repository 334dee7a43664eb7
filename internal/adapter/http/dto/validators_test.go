package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidators(v)
	return v
}

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsAndEscapes(t *testing.T) {
	req := DepositRequest{
		Method:      "  BTC <b>fast</b> ",
		EvidenceRef: " upload-1.png ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "BTC &lt;b&gt;fast&lt;/b&gt;", req.Method)
	assert.Equal(t, "upload-1.png", req.EvidenceRef)
}

func TestSanitizeStruct_SkipsPasswords(t *testing.T) {
	req := RegisterRequest{Name: " Ada ", Email: " ada@example.com ", Password: " <p&ss> "}
	SanitizeStruct(&req)

	assert.Equal(t, "Ada", req.Name)
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, " <p&ss> ", req.Password)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	req := InvestRequest{Amount: decimal.NewFromInt(5)}
	SanitizeStruct(req)
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(5)))
}

// --- Validator tests ---

func TestMoneyValidator(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name   string
		amount string
		valid  bool
	}{
		{"integer", "100", true},
		{"two decimals", "100.25", true},
		{"trailing zero", "100.10", true},
		{"three decimals", "100.001", false},
		{"too large", "1000000000000000000", false},
		{"zero", "0", false},
		{"negative", "-5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(InvestRequest{Amount: decimal.RequireFromString(tt.amount)})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestWithdrawRequest_Validation(t *testing.T) {
	v := newValidator()
	amount := decimal.NewFromInt(20000)

	assert.NoError(t, v.Struct(WithdrawRequest{Amount: amount, Method: "USDT", Address: "0xabc"}))
	assert.Error(t, v.Struct(WithdrawRequest{Amount: amount, Method: "USDT"}))
	assert.Error(t, v.Struct(WithdrawRequest{Amount: amount, Address: "0xabc"}))
}

func TestSafeIDAndURL(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name  string
		qr    string
		valid bool
	}{
		{"empty", "", true},
		{"file name", "qr-code_1.png", true},
		{"https url", "https://cdn.example.com/qr.png", true},
		{"javascript url", "javascript:alert(1)", false},
		{"spaces", "my qr.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(PaymentMethodRequest{Name: "BTC", Address: "bc1", QRRef: tt.qr})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEvidenceRef_SafeID(t *testing.T) {
	v := newValidator()
	amount := decimal.NewFromInt(100)

	assert.NoError(t, v.Struct(DepositRequest{Amount: amount, Method: "BTC"}))
	assert.NoError(t, v.Struct(DepositRequest{Amount: amount, Method: "BTC", EvidenceRef: "upload-1.png"}))
	assert.Error(t, v.Struct(DepositRequest{Amount: amount, Method: "BTC", EvidenceRef: "../etc/passwd"}))
}
