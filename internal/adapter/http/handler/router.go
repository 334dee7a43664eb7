package handler

import (
	"time"

	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultMaxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc          ports.AuthService
	LedgerSvc        ports.LedgerService
	Gate             ports.ApprovalGate
	DashboardSvc     ports.DashboardService
	PaymentMethodSvc ports.PaymentMethodService
	TokenSvc         ports.TokenService
	RateLimiter      ports.RateLimiter      // nil = rate limiting disabled
	IdemCache        ports.IdempotencyCache // nil = Idempotency-Key ignored
	IdempotencyTTL   time.Duration
	AuditSvc         ports.AuditService // nil = audit logging disabled
	HealthCheckers   []ports.HealthChecker
	MaxBodyBytes     int64
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	noop := func(c *gin.Context) { c.Next() }
	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimiter == nil || !ok {
			return noop
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}
	idem := noop
	if deps.IdemCache != nil {
		idem = middleware.Idempotency(deps.IdemCache, deps.IdempotencyTTL, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.POST("/admin/login", rl("auth_login"), authHandler.AdminLogin)
	}

	pmHandler := NewPaymentMethodHandler(deps.PaymentMethodSvc)
	v1.GET("/payment-methods/current", rl("dashboard"), pmHandler.Current)

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Account holder ---
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc, deps.DashboardSvc)
	user := v1.Group("/user", jwtAuth, middleware.RequireRole(ports.RoleUser))
	{
		user.GET("/dashboard", rl("dashboard"), ledgerHandler.Dashboard)
		user.POST("/deposits", rl("ledger_write"), idem, ledgerHandler.Deposit)
		user.POST("/investments", rl("ledger_write"), idem, ledgerHandler.Invest)
		user.POST("/withdrawals", rl("ledger_write"), idem, ledgerHandler.Withdraw)
	}

	// --- Administrator ---
	adminHandler := NewAdminHandler(deps.Gate, deps.DashboardSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireRole(ports.RoleAdmin), rl("admin"))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/deposits/:id/approve", idem, adminHandler.ApproveDeposit)
		admin.POST("/deposits/:id/reject", idem, adminHandler.RejectDeposit)
		admin.POST("/withdrawals/:id/settle", idem, adminHandler.SettleWithdrawal)
		admin.GET("/payment-methods", pmHandler.List)
		admin.POST("/payment-methods", pmHandler.Publish)
	}

	return r
}
