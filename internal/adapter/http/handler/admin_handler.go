package handler

import (
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrator's review endpoints.
type AdminHandler struct {
	gate         ports.ApprovalGate
	dashboardSvc ports.DashboardService
}

func NewAdminHandler(gate ports.ApprovalGate, dashboardSvc ports.DashboardService) *AdminHandler {
	return &AdminHandler{gate: gate, dashboardSvc: dashboardSvc}
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboardSvc.AdminDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAdminDashboardResponse(dashboard))
}

// ApproveDeposit handles POST /api/v1/admin/deposits/:id/approve and returns
// the credited account.
func (h *AdminHandler) ApproveDeposit(c *gin.Context) {
	entryID, ok := entryIDParam(c)
	if !ok {
		return
	}

	account, err := h.gate.ApproveDeposit(c.Request.Context(), entryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, toAccountResponse(account), "Deposit approved")
}

// RejectDeposit handles POST /api/v1/admin/deposits/:id/reject.
func (h *AdminHandler) RejectDeposit(c *gin.Context) {
	entryID, ok := entryIDParam(c)
	if !ok {
		return
	}

	if err := h.gate.RejectDeposit(c.Request.Context(), entryID); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, gin.H{"id": entryID.String()}, "Deposit rejected")
}

// SettleWithdrawal handles POST /api/v1/admin/withdrawals/:id/settle.
func (h *AdminHandler) SettleWithdrawal(c *gin.Context) {
	entryID, ok := entryIDParam(c)
	if !ok {
		return
	}

	entry, err := h.gate.SettleWithdrawal(c.Request.Context(), entryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMessage(c, toEntryResponse(entry), "Withdrawal settled")
}
