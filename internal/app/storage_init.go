package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/jsonfile"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/memory"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/postgres"
	s3store "github.com/vladislavdragonenkov/hotelres/internal/storage/s3"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/sqlite"
)

// ErrUnsupportedStorageDriver возвращается для неизвестного драйвера.
var ErrUnsupportedStorageDriver = errors.New("unsupported storage driver")

// openRecordStore открывает хранилище записей выбранного драйвера.
// closeFn освобождает ресурсы драйвера и никогда не бывает nil.
func openRecordStore(ctx context.Context, cfg Config, logger *log.Entry) (domain.RecordStore, func() error, error) {
	noop := func() error { return nil }
	storeLogger := logger.WithField("driver", string(cfg.StorageDriver))

	switch cfg.StorageDriver {
	case StorageDriverJSON:
		store := jsonfile.New(cfg.DataDir, storeLogger.WithField("component", "jsonfile-store"))
		return store, noop, nil

	case StorageDriverMemory:
		return memory.NewRecordStore(storeLogger.WithField("component", "memory-store")), noop, nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, storeLogger.WithField("component", "sqlite-store"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("%s is required for postgres storage", EnvPostgresDSN)
		}
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = pg.Close()
				return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		return postgres.NewRecordStore(pg, storeLogger.WithField("component", "postgres-store")), pg.Close, nil

	case StorageDriverS3:
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		}, storeLogger.WithField("component", "s3-store"))
		if err != nil {
			return nil, nil, fmt.Errorf("open s3 store: %w", err)
		}
		return store, noop, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedStorageDriver, cfg.StorageDriver)
	}
}
