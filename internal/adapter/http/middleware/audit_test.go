package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditLog_UserDeposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	accountID := uuid.New()
	var captured *domain.AuditLog
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		captured = entry
	})

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/user/deposits", func(c *gin.Context) {
		c.Set(CtxAccountID, accountID)
		c.Set(CtxRole, ports.RoleUser)
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/user/deposits", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, domain.AuditActionDeposit, captured.Action)
	assert.Equal(t, "entry", captured.ResourceType)
	assert.Equal(t, "user", captured.Actor)
	require.NotNil(t, captured.AccountID)
	assert.Equal(t, accountID, *captured.AccountID)
}

func TestAuditLog_AdminApprovalUsesRouteTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	entryID := uuid.NewString()
	var captured *domain.AuditLog
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		captured = entry
	})

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/admin/deposits/:id/approve", func(c *gin.Context) {
		c.Set(CtxRole, ports.RoleAdmin)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/deposits/"+entryID+"/approve", nil))

	require.NotNil(t, captured)
	assert.Equal(t, domain.AuditActionApproveDeposit, captured.Action)
	assert.Equal(t, entryID, captured.ResourceID)
	assert.Equal(t, "admin", captured.Actor)
	assert.Nil(t, captured.AccountID)
}

func TestAuditLog_AnonymousRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	var captured *domain.AuditLog
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		captured = entry
	})

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/auth/register", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil))

	require.NotNil(t, captured)
	assert.Equal(t, "anonymous", captured.Actor)
	assert.Equal(t, domain.AuditActionRegister, captured.Action)
}

func TestAuditLog_Skips(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		replay bool
	}{
		{"reads", http.MethodGet, "/api/v1/user/dashboard", http.StatusOK, false},
		{"failed writes", http.MethodPost, "/api/v1/user/deposits", http.StatusBadRequest, false},
		{"replayed writes", http.MethodPost, "/api/v1/user/deposits", http.StatusCreated, true},
		{"unmapped routes", http.MethodPost, "/api/v1/other", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No expectations: Log must not be called.
			mockAudit := mocks.NewMockAuditService(ctrl)

			r := gin.New()
			r.Use(AuditLog(mockAudit))
			r.Handle(tt.method, tt.path, func(c *gin.Context) {
				if tt.replay {
					c.Header(HeaderReplayed, "true")
				}
				c.JSON(tt.status, gin.H{})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
