package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/hotelres/internal/health"
)

func TestRun_MemoryGracefulShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.StorageDriver = StorageDriverMemory

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, cfg)
	require.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
}

func TestRun_InvalidStorageDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "invalid-driver"
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported storage driver")
}

func TestRun_InvalidHTTPAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverMemory
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.HTTPAddr = "256.0.0.1:80"

	err := Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestInitRuntimeDependencies_PostgresSuccess(t *testing.T) {
	dsn := postgresTestDSNCandidate()
	if dsn == "" {
		t.Skip("postgres dsn is not available")
	}

	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres
	cfg.PostgresDSN = dsn
	cfg.PostgresAutoMigrate = true

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "postgres-init"), false)
	if err != nil {
		t.Skipf("postgres is not available for app integration test: %v", err)
	}
	defer func() { _ = deps.closeFn() }()

	require.Equal(t, "postgres", deps.store.Name())
	require.Equal(t, healthcheck.StatusHealthy, deps.storageChecker.Check().Status)

	deps.store.EnsureExists(domain.StoreHotels)
	require.NotNil(t, deps.store.ReadAll(domain.StoreHotels))
}

func postgresTestDSNCandidate() string {
	return strings.TrimSpace(os.Getenv("HOTELRES_POSTGRES_TEST_DSN"))
}
