package handler

import (
	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler serves the account holder's endpoints.
type LedgerHandler struct {
	ledgerSvc    ports.LedgerService
	dashboardSvc ports.DashboardService
}

func NewLedgerHandler(ledgerSvc ports.LedgerService, dashboardSvc ports.DashboardService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, dashboardSvc: dashboardSvc}
}

// Dashboard handles GET /api/v1/user/dashboard.
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	accountID, ok := callerAccount(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardSvc.UserDashboard(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toUserDashboardResponse(dashboard))
}

// Deposit handles POST /api/v1/user/deposits. The entry stays pending
// until the administrator approves it.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	accountID, ok := callerAccount(c)
	if !ok {
		return
	}
	var req dto.DepositRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.ledgerSvc.RecordDeposit(c.Request.Context(), ports.DepositRequest{
		AccountID:   accountID,
		Amount:      req.Amount,
		Method:      req.Method,
		EvidenceRef: req.EvidenceRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toEntryResponse(entry))
}

// Invest handles POST /api/v1/user/investments.
func (h *LedgerHandler) Invest(c *gin.Context) {
	accountID, ok := callerAccount(c)
	if !ok {
		return
	}
	var req dto.InvestRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.ledgerSvc.Invest(c.Request.Context(), ports.InvestRequest{
		AccountID: accountID,
		Amount:    req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// Withdraw handles POST /api/v1/user/withdrawals.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	accountID, ok := callerAccount(c)
	if !ok {
		return
	}
	var req dto.WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		AccountID:          accountID,
		Amount:             req.Amount,
		Method:             req.Method,
		DestinationAddress: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}
