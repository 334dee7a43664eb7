package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditRoutes maps route templates (gin FullPath) to audit actions.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/auth/register":                {domain.AuditActionRegister, "account"},
	"POST /api/v1/auth/login":                   {domain.AuditActionLogin, "session"},
	"POST /api/v1/auth/admin/login":             {domain.AuditActionAdminLogin, "session"},
	"POST /api/v1/user/deposits":                {domain.AuditActionDeposit, "entry"},
	"POST /api/v1/user/investments":             {domain.AuditActionInvest, "entry"},
	"POST /api/v1/user/withdrawals":             {domain.AuditActionWithdraw, "entry"},
	"POST /api/v1/admin/deposits/:id/approve":   {domain.AuditActionApproveDeposit, "entry"},
	"POST /api/v1/admin/deposits/:id/reject":    {domain.AuditActionRejectDeposit, "entry"},
	"POST /api/v1/admin/withdrawals/:id/settle": {domain.AuditActionSettleWithdrawal, "entry"},
	"POST /api/v1/admin/payment-methods":        {domain.AuditActionPaymentMethod, "payment_method"},
}

// AuditLog records successful writes after the handler has run.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		if c.Writer.Header().Get(HeaderReplayed) != "" {
			return
		}
		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var accountID *uuid.UUID
		if id, ok := AccountID(c); ok {
			accountID = &id
		}
		actor := "anonymous"
		if role, ok := c.Get(CtxRole); ok {
			actor = string(role.(ports.Role))
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			AccountID:    accountID,
			Actor:        actor,
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.Param("id"),
			Details:      string(details),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now().UTC(),
		})
	}
}
