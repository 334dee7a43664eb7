package main

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"investment-ledger/config"
	"investment-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_MemoryWALSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.StorageConfig{
		Driver:  config.DriverMemory,
		WALPath: filepath.Join(t.TempDir(), "ledger.wal"),
	}}

	store, err := openStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	account := domain.NewAccount("Ada", "ada@example.com", "hash", time.Now().UTC())
	require.NoError(t, store.accounts.Create(ctx, account))
	store.close()

	reopened, err := openStore(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.close()

	got, err := reopened.accounts.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, "memory", reopened.health.Name())
}

func TestOpenStore_MemoryWithoutWAL(t *testing.T) {
	store, err := openStore(context.Background(), &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMemory},
	}, zerolog.Nop())
	require.NoError(t, err)
	defer store.close()

	assert.NoError(t, store.health.Ping(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), &config.Config{
		Storage: config.StorageConfig{Driver: "sqlite"},
	}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage driver")
}

func runConfig(t *testing.T, port int) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            port,
			Mode:            "test",
			ShutdownTimeout: time.Second,
		},
		Storage: config.StorageConfig{
			Driver:  config.DriverMemory,
			WALPath: filepath.Join(t.TempDir(), "ledger.wal"),
		},
		JWT:    config.JWTConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"},
		Admin:  config.AdminConfig{Password: "admin"},
		Ledger: config.LedgerConfig{MinDeposit: "100", MinWithdraw: "20000", IdempotencyTTL: time.Hour},
	}
}

func TestRun_ServeFailureReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := runConfig(t, ln.Addr().(*net.TCPAddr).Port)

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, zerolog.Nop()) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "http server")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the listener failed")
	}

	store, err := openStore(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err, "WAL must be closed and reopenable")
	store.close()
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := runConfig(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zerolog.Nop()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not shut down after cancel")
	}
}

func TestRun_InvalidPolicy(t *testing.T) {
	cfg := runConfig(t, 0)
	cfg.Ledger.MinDeposit = "lots"
	assert.ErrorContains(t, run(context.Background(), cfg, zerolog.Nop()), "ledger policy")
}
