// Package postgres хранит списки записей в таблице record_stores PostgreSQL
// (одна строка JSONB на вид сущностей) и управляет её схемой.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Движок читает и пишет списки целиком под своим мьютексом,
// поэтому небольшого пула хватает.
var pool = struct {
	maxOpen, maxIdle      int
	maxLifetime, maxIdleT time.Duration
	connectTimeout        time.Duration
}{
	maxOpen:        4,
	maxIdle:        4,
	maxLifetime:    30 * time.Minute,
	maxIdleT:       5 * time.Minute,
	connectTimeout: 5 * time.Second,
}

// Store: подключение к базе с таблицами record_stores и schema_migrations.
type Store struct {
	db *sql.DB
}

// Open подключается по dsn через pgx и проверяет соединение.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(pool.maxOpen)
	db.SetMaxIdleConns(pool.maxIdle)
	db.SetConnMaxLifetime(pool.maxLifetime)
	db.SetConnMaxIdleTime(pool.maxIdleT)

	store := &Store{db: db}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return store, nil
}

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	pingCtx, cancel := context.WithTimeout(ctx, pool.connectTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema применяет все up-миграции. Используется при HOTELRES_POSTGRES_AUTO_MIGRATE.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.MigrateUp(ctx, 0)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
