package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"investment-ledger/config"
	"investment-ledger/internal/adapter/events"
	kafkaEvents "investment-ledger/internal/adapter/events/kafka"
	httpHandler "investment-ledger/internal/adapter/http/handler"
	"investment-ledger/internal/adapter/storage/memory"
	pgStorage "investment-ledger/internal/adapter/storage/postgres"
	redisStorage "investment-ledger/internal/adapter/storage/redis"
	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/internal/service"
	"investment-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ledgerStore bundles the repositories of one storage backing.
type ledgerStore struct {
	accounts       ports.AccountRepository
	entries        ports.EntryRepository
	paymentMethods ports.PaymentMethodRepository
	audit          ports.AuditRepository
	transactor     ports.DBTransactor
	health         ports.HealthChecker
	close          func()
}

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("ILG_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("Investment ledger stopped")
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the server fails. Every resource it
// opens is closed before it returns.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting investment ledger")

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open ledger storage: %w", err)
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis backs idempotency and rate limiting; without it both are off.
	var (
		idemCache   ports.IdempotencyCache
		rateLimiter ports.RateLimiter
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		idemCache = redisStorage.NewIdempotencyCache(rdb)
		rateLimiter = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	var publisher ports.EventPublisher = events.NewLogPublisher(logger.Component(log, "events"))
	if cfg.Kafka.Enabled() {
		kp := kafkaEvents.NewPublisher(kafkaEvents.NewWriter(cfg.Kafka))
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to flush ledger events")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Publishing ledger events to Kafka")
	}

	minDeposit, minWithdraw, err := cfg.Ledger.Minimums()
	if err != nil {
		return fmt.Errorf("ledger policy: %w", err)
	}
	policy := domain.Policy{MinDeposit: minDeposit, MinWithdraw: minWithdraw}

	// Core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Business services
	ledgerLog := logger.Component(log, "ledger")
	authSvc := service.NewAuthService(store.accounts, hashSvc, tokenSvc, cfg.Admin.Password)
	ledgerSvc := service.NewLedgerService(store.accounts, store.entries, store.transactor, publisher, policy, ledgerLog)
	gate := service.NewApprovalGate(store.accounts, store.entries, store.transactor, publisher, ledgerLog)
	dashboardSvc := service.NewDashboardService(store.accounts, store.entries)
	paymentMethodSvc := service.NewPaymentMethodService(store.paymentMethods, store.transactor, ledgerLog)
	auditSvc := service.NewAuditService(store.audit, logger.Component(log, "audit"))
	defer auditSvc.Wait()

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:          authSvc,
		LedgerSvc:        ledgerSvc,
		Gate:             gate,
		DashboardSvc:     dashboardSvc,
		PaymentMethodSvc: paymentMethodSvc,
		TokenSvc:         tokenSvc,
		RateLimiter:      rateLimiter,
		IdemCache:        idemCache,
		IdempotencyTTL:   cfg.Ledger.IdempotencyTTL,
		AuditSvc:         auditSvc,
		HealthCheckers:   healthCheckers,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		Logger:           logger.Component(log, "http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// openStore connects the configured storage driver.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ledgerStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := pgStorage.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
			log.Info().Msg("PostgreSQL schema applied")
		}
		log.Info().Msg("PostgreSQL connected")
		return &ledgerStore{
			accounts:       pgStorage.NewAccountRepo(pool),
			entries:        pgStorage.NewEntryRepo(pool),
			paymentMethods: pgStorage.NewPaymentMethodRepo(pool),
			audit:          pgStorage.NewAuditRepo(pool),
			transactor:     pgStorage.NewTransactor(pool),
			health:         pgStorage.NewHealthCheck(pool),
			close:          pool.Close,
		}, nil

	case config.DriverMemory:
		memLog := logger.Component(log, "memory")
		var (
			s   *memory.Store
			err error
		)
		if cfg.Storage.WALPath != "" {
			s, err = memory.Open(cfg.Storage.WALPath, memLog)
			if err != nil {
				return nil, fmt.Errorf("open memory store: %w", err)
			}
		} else {
			s = memory.New(memLog)
			log.Warn().Msg("Memory storage without a WAL: ledger state is lost on exit")
		}
		return &ledgerStore{
			accounts:       s.Accounts(),
			entries:        s.Entries(),
			paymentMethods: s.PaymentMethods(),
			audit:          s.AuditLogs(),
			transactor:     s,
			health:         s,
			close: func() {
				if err := s.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close memory store")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
