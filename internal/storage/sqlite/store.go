// Package sqlite хранит список записей каждого вида сущностей одной строкой
// таблицы record_stores во встроенной базе SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

const (
	driverName  = "sqlite"
	defaultPath = "hotelres.db"
	opTimeout   = 5 * time.Second

	schemaDDL = `CREATE TABLE IF NOT EXISTS record_stores (
		kind TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`
)

// Store: реализация domain.RecordStore поверх SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Entry
}

// Open открывает (или создаёт) файл базы и таблицу record_stores.
func Open(path string, logger *log.Entry) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if logger == nil {
		logger = log.New().WithField("component", "sqlite-store")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Один писатель: SQLite сериализует запись на уровне файла.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create record_stores table: %w", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Name возвращает имя драйвера.
func (s *Store) Name() string { return driverName }

// Path возвращает путь к файлу базы.
func (s *Store) Path() string { return s.path }

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB { return s.db }

// EnsureExists вставляет пустой список для kind, если строки ещё нет.
func (s *Store) EnsureExists(kind domain.StoreKind) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO record_stores(kind, payload) VALUES(?, ?) ON CONFLICT(kind) DO NOTHING`,
		string(kind), []byte("[]"),
	); err != nil {
		s.logger.WithError(err).WithField("store", string(kind)).Error("failed to create empty store")
	}
}

// ReadAll читает записи kind. Ошибки запроса дают пустой список и запись в лог.
func (s *Store) ReadAll(kind domain.StoreKind) []domain.Record {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM record_stores WHERE kind = ?`, string(kind)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.EnsureExists(kind)
		return []domain.Record{}
	}
	if err != nil {
		s.logger.WithError(err).WithField("store", string(kind)).Error("failed to read store")
		return []domain.Record{}
	}
	return codec.ParseList(payload, s.source(kind), s.logger)
}

// WriteAll заменяет содержимое kind одним upsert.
func (s *Store) WriteAll(kind domain.StoreKind, records []domain.Record) error {
	payload, err := codec.MarshalList(records)
	if err != nil {
		s.logger.WithError(err).WithField("store", string(kind)).Error("failed to encode store")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO record_stores(kind, payload) VALUES(?, ?) ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload`,
		string(kind), payload,
	); err != nil {
		s.logger.WithError(err).WithField("store", string(kind)).Error("failed to write store")
		return fmt.Errorf("upsert %s: %w", kind, err)
	}
	return nil
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// Check вызывает Ping с фоновым контекстом для health-проверок.
func (s *Store) Check() error {
	return s.Ping(context.Background())
}

// Close закрывает базу.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) source(kind domain.StoreKind) string {
	return s.path + "#" + string(kind)
}
