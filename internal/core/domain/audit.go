package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionRegister         AuditAction = "REGISTER"
	AuditActionLogin            AuditAction = "LOGIN"
	AuditActionAdminLogin       AuditAction = "ADMIN_LOGIN"
	AuditActionDeposit          AuditAction = "DEPOSIT"
	AuditActionInvest           AuditAction = "INVEST"
	AuditActionWithdraw         AuditAction = "WITHDRAW"
	AuditActionApproveDeposit   AuditAction = "APPROVE_DEPOSIT"
	AuditActionRejectDeposit    AuditAction = "REJECT_DEPOSIT"
	AuditActionSettleWithdrawal AuditAction = "SETTLE_WITHDRAWAL"
	AuditActionPaymentMethod    AuditAction = "PAYMENT_METHOD"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	AccountID    *uuid.UUID  `json:"account_id,omitempty"`
	Actor        string      `json:"actor"` // "user", "admin" or "anonymous"
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
