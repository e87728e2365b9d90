package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// RecordStore: реализация domain.RecordStore: один JSONB-документ на вид сущностей
// в таблице record_stores.
type RecordStore struct {
	db     *sql.DB
	logger *log.Entry
}

// NewRecordStore создаёт PostgreSQL-реализацию RecordStore.
// Схема должна быть создана миграциями заранее.
func NewRecordStore(store *Store, logger *log.Entry) *RecordStore {
	if logger == nil {
		logger = log.New().WithField("component", "postgres-store")
	}
	return &RecordStore{db: store.DB(), logger: logger}
}

func (r *RecordStore) Name() string { return "postgres" }

func (r *RecordStore) EnsureExists(kind domain.StoreKind) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO record_stores (kind, payload, updated_at)
		VALUES ($1, '[]'::jsonb, NOW())
		ON CONFLICT (kind) DO NOTHING
	`, string(kind)); err != nil {
		r.logger.WithError(err).WithField("store", string(kind)).Error("failed to create empty store")
	}
}

func (r *RecordStore) ReadAll(kind domain.StoreKind) []domain.Record {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload::text
		FROM record_stores
		WHERE kind = $1
	`, string(kind)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		r.EnsureExists(kind)
		return []domain.Record{}
	}
	if err != nil {
		r.logger.WithError(err).WithField("store", string(kind)).Error("failed to read store")
		return []domain.Record{}
	}
	return codec.ParseList(payload, "record_stores/"+string(kind), r.logger)
}

func (r *RecordStore) WriteAll(kind domain.StoreKind, records []domain.Record) error {
	payload, err := codec.MarshalList(records)
	if err != nil {
		r.logger.WithError(err).WithField("store", string(kind)).Error("failed to encode store")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO record_stores (kind, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (kind) DO UPDATE
		SET payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, string(kind), string(payload)); err != nil {
		r.logger.WithError(err).WithField("store", string(kind)).Error("failed to write store")
		return fmt.Errorf("upsert record store %s: %w", kind, err)
	}
	return nil
}

// Check проверяет, что база доступна.
func (r *RecordStore) Check() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}
