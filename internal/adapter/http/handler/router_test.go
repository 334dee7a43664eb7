package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"investment-ledger/internal/adapter/events"
	"investment-ledger/internal/adapter/http/handler"
	"investment-ledger/internal/adapter/http/middleware"
	"investment-ledger/internal/adapter/storage/memory"
	redisStore "investment-ledger/internal/adapter/storage/redis"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "admin-pass"

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	audit  *service.AuditService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := memory.New(log)
	publisher := events.NewLogPublisher(log)
	policy := domain.Policy{MinDeposit: decimal.NewFromInt(100), MinWithdraw: decimal.NewFromInt(50)}
	tokens := service.NewJWTTokenService("router-test-secret-at-least-32-bytes", time.Hour, "investment-ledger")
	audit := service.NewAuditService(store.AuditLogs(), log)
	dashboards := service.NewDashboardService(store.Accounts(), store.Entries())

	router := handler.SetupRouter(handler.RouterDeps{
		AuthSvc:          service.NewAuthService(store.Accounts(), service.NewArgon2HashService(), tokens, adminPassword),
		LedgerSvc:        service.NewLedgerService(store.Accounts(), store.Entries(), store, publisher, policy, log),
		Gate:             service.NewApprovalGate(store.Accounts(), store.Entries(), store, publisher, log),
		DashboardSvc:     dashboards,
		PaymentMethodSvc: service.NewPaymentMethodService(store.PaymentMethods(), store, log),
		TokenSvc:         tokens,
		RateLimiter:      redisStore.NewRateLimitStore(client),
		IdemCache:        redisStore.NewIdempotencyCache(client),
		IdempotencyTTL:   time.Hour,
		AuditSvc:         audit,
		HealthCheckers:   []ports.HealthChecker{store, redisStore.NewHealthCheck(client)},
		Logger:           log,
	})
	return &testServer{router: router, store: store, audit: audit}
}

type call struct {
	method  string
	path    string
	body    string
	token   string
	headers map[string]string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// data decodes the success envelope's data object.
func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NotNil(t, env.Data, w.Body.String())
	return env.Data
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/register",
		body: `{"name":"Ada","email":"` + email + `","password":"password123"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data(t, w)["token"].(string)
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/auth/admin/login", body: `{"password":"` + adminPassword + `"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return data(t, w)["token"].(string)
}

func TestRouter_LedgerLifecycle(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "ada@example.com")
	admin := s.adminToken(t)

	// Deposit with an idempotency key, then replay it.
	deposit := call{method: http.MethodPost, path: "/api/v1/user/deposits", token: user,
		body: `{"amount":"500","method":"BTC"}`, headers: map[string]string{middleware.HeaderIdempotencyKey: "dep-1"}}
	first := s.do(t, deposit)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	replay := s.do(t, deposit)
	assert.Equal(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get(middleware.HeaderReplayed))
	depositID := data(t, first)["id"].(string)

	// The administrator sees exactly one pending deposit.
	w := s.do(t, call{method: http.MethodGet, path: "/api/v1/admin/dashboard", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	pending := data(t, w)["pending_deposits"].([]interface{})
	require.Len(t, pending, 1)
	assert.Equal(t, depositID, pending[0].(map[string]interface{})["id"])

	// Approve credits once; a second approval is rejected.
	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/deposits/" + depositID + "/approve", token: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "500", data(t, w)["balance"])
	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/deposits/" + depositID + "/approve", token: admin})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Invest and withdraw debit the balance immediately.
	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/user/investments", token: user, body: `{"amount":"200"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "300", data(t, w)["balance"])

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/user/withdrawals", token: user,
		body: `{"amount":"400","method":"USDT","address":"0xabc"}`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/user/withdrawals", token: user,
		body: `{"amount":"100","method":"USDT","address":"0xabc"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "200", data(t, w)["balance"])

	// Dashboard lists every entry by kind.
	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/user/dashboard", token: user})
	require.Equal(t, http.StatusOK, w.Code)
	dash := data(t, w)
	assert.Len(t, dash["deposits"], 1)
	assert.Len(t, dash["investments"], 1)
	withdrawals := dash["withdrawals"].([]interface{})
	require.Len(t, withdrawals, 1)
	withdrawalID := withdrawals[0].(map[string]interface{})["id"].(string)

	// Settling the withdrawal leaves the balance alone.
	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/withdrawals/" + withdrawalID + "/settle", token: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SETTLED", data(t, w)["status"])

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/user/dashboard", token: user})
	acc := data(t, w)["account"].(map[string]interface{})
	assert.Equal(t, "200", acc["balance"])
	assert.Equal(t, "500", acc["total_deposit"])
	assert.Equal(t, "100", acc["total_withdraw"])
	assert.Equal(t, "200", acc["current_invest"])

	s.audit.Wait()
	actions := map[domain.AuditAction]int{}
	for _, l := range s.store.AuditLogs().Logs() {
		actions[l.Action]++
	}
	assert.Equal(t, 1, actions[domain.AuditActionDeposit], "replayed deposit is not audited twice")
	assert.Equal(t, 1, actions[domain.AuditActionApproveDeposit])
	assert.Equal(t, 1, actions[domain.AuditActionSettleWithdrawal])
}

func TestRouter_RejectedDepositNeverCredits(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "ada@example.com")
	admin := s.adminToken(t)

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/user/deposits", token: user, body: `{"amount":"300","method":"BTC"}`})
	require.Equal(t, http.StatusCreated, w.Code)
	depositID := data(t, w)["id"].(string)

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/deposits/" + depositID + "/reject", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/deposits/" + depositID + "/approve", token: admin})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/user/dashboard", token: user})
	assert.Equal(t, "0", data(t, w)["account"].(map[string]interface{})["balance"])
}

func TestRouter_DepositBelowMinimum(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "ada@example.com")

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/user/deposits", token: user, body: `{"amount":"99.99","method":"BTC"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AccessControl(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "ada@example.com")
	admin := s.adminToken(t)

	tests := []struct {
		name   string
		call   call
		status int
	}{
		{"no token", call{method: http.MethodGet, path: "/api/v1/user/dashboard"}, http.StatusUnauthorized},
		{"user on admin route", call{method: http.MethodGet, path: "/api/v1/admin/dashboard", token: user}, http.StatusForbidden},
		{"admin on user route", call{method: http.MethodGet, path: "/api/v1/user/dashboard", token: admin}, http.StatusForbidden},
		{"wrong admin password", call{method: http.MethodPost, path: "/api/v1/auth/admin/login", body: `{"password":"nope"}`}, http.StatusUnauthorized},
		{"duplicate email", call{method: http.MethodPost, path: "/api/v1/auth/register",
			body: `{"name":"Ada","email":"ADA@example.com","password":"password123"}`}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.call)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_PaymentMethods(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	w := s.do(t, call{method: http.MethodGet, path: "/api/v1/payment-methods/current"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/payment-methods", token: admin,
		body: `{"name":"BTC","address":"bc1qxyz","qr_ref":"https://cdn.example.com/qr.png"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/payment-methods/current"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bc1qxyz", data(t, w)["address"])
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"memory"`)
	assert.Contains(t, w.Body.String(), `"redis"`)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

// TestRouter_ConcurrentInvestments fires debits at one account in parallel;
// row locking must let exactly as many through as the balance covers.
func TestRouter_ConcurrentInvestments(t *testing.T) {
	s := newTestServer(t)
	user := s.register(t, "ada@example.com")
	admin := s.adminToken(t)

	w := s.do(t, call{method: http.MethodPost, path: "/api/v1/user/deposits", token: user, body: `{"amount":"1000","method":"BTC"}`})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, call{method: http.MethodPost, path: "/api/v1/admin/deposits/" + data(t, w)["id"].(string) + "/approve", token: admin})
	require.Equal(t, http.StatusOK, w.Code)

	const workers = 20
	var ok, insufficient atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := s.do(t, call{method: http.MethodPost, path: "/api/v1/user/investments", token: user, body: `{"amount":"70"}`})
			switch w.Code {
			case http.StatusCreated:
				ok.Add(1)
			case http.StatusUnprocessableEntity:
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(14), ok.Load())
	assert.Equal(t, int32(workers-14), insufficient.Load())

	w = s.do(t, call{method: http.MethodGet, path: "/api/v1/user/dashboard", token: user})
	acc := data(t, w)["account"].(map[string]interface{})
	assert.Equal(t, "20", acc["balance"])
	assert.Equal(t, "980", acc["current_invest"])
}
