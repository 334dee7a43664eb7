package handler

import (
	"errors"
	"net/http"
	"time"

	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON decodes and sanitizes the body into req. It writes the error
// response itself and reports whether the handler should continue.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, middleware.ErrBodyTooLarge())
			return false
		}
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

func entryIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid entry id"))
		return uuid.Nil, false
	}
	return id, true
}

func callerAccount(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
	}
	return id, ok
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:            a.ID.String(),
		Name:          a.Name,
		Email:         a.Email,
		Balance:       a.Balance,
		TotalDeposit:  a.TotalDeposit,
		TotalWithdraw: a.TotalWithdraw,
		TotalInvest:   a.TotalInvest,
		CurrentInvest: a.CurrentInvest,
		CreatedAt:     formatTime(a.CreatedAt),
	}
}

func toEntryResponse(e *domain.Entry) dto.EntryResponse {
	resp := dto.EntryResponse{
		ID:        e.ID.String(),
		AccountID: e.AccountID.String(),
		Kind:      string(e.Kind),
		Amount:    e.Amount,
		Status:    string(e.Status),
		Method:    e.Method(),
		CreatedAt: formatTime(e.CreatedAt),
	}
	if e.Deposit != nil {
		resp.EvidenceRef = e.Deposit.EvidenceRef
	}
	if e.Withdrawal != nil {
		resp.DestinationAddress = e.Withdrawal.DestinationAddress
	}
	if e.SettledAt != nil {
		s := formatTime(*e.SettledAt)
		resp.SettledAt = &s
	}
	return resp
}

func toEntryResponses(entries []domain.Entry) []dto.EntryResponse {
	out := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	return out
}

func toAuthResponse(token string, expiry time.Time, account *domain.Account) dto.AuthResponse {
	resp := dto.AuthResponse{Token: token, Expiry: expiry.Unix()}
	if account != nil {
		a := toAccountResponse(account)
		resp.Account = &a
	}
	return resp
}

func toUserDashboardResponse(d *ports.UserDashboard) dto.UserDashboardResponse {
	return dto.UserDashboardResponse{
		Account:     toAccountResponse(d.Account),
		Deposits:    toEntryResponses(d.Deposits),
		Withdrawals: toEntryResponses(d.Withdrawals),
		Investments: toEntryResponses(d.Investments),
	}
}

func toAdminDashboardResponse(d *ports.AdminDashboard) dto.AdminDashboardResponse {
	resp := dto.AdminDashboardResponse{
		Accounts:           make([]dto.AccountResponse, 0, len(d.Accounts)),
		PendingDeposits:    make([]dto.PendingDepositResponse, 0, len(d.PendingDeposits)),
		PendingWithdrawals: toEntryResponses(d.PendingWithdrawals),
	}
	for i := range d.Accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(&d.Accounts[i]))
	}
	for i := range d.PendingDeposits {
		p := &d.PendingDeposits[i]
		pending := dto.PendingDepositResponse{EntryResponse: toEntryResponse(&p.Entry)}
		if p.Account != nil {
			pending.Account = &dto.AccountSummary{
				ID:    p.Account.ID.String(),
				Name:  p.Account.Name,
				Email: p.Account.Email,
			}
		}
		resp.PendingDeposits = append(resp.PendingDeposits, pending)
	}
	return resp
}

func toPaymentMethodResponse(m *domain.PaymentMethod) dto.PaymentMethodResponse {
	return dto.PaymentMethodResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Address:   m.Address,
		QRRef:     m.QRRef,
		CreatedAt: formatTime(m.CreatedAt),
	}
}
