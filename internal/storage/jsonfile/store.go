// Package jsonfile хранит записи каждого вида сущностей в отдельном JSON-файле
// каталога данных: hotels.json, customers.json, reservations.json.
package jsonfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

const (
	driverName = "json"
	filePerm   = 0o644
	dirPerm    = 0o755
)

// Store: файловая реализация domain.RecordStore.
type Store struct {
	dir    string
	logger *log.Entry
}

// New создаёт хранилище в каталоге dir. Каталог создаётся при необходимости;
// ошибка создания только логируется, как и остальные сбои ввода-вывода.
func New(dir string, logger *log.Entry) *Store {
	if logger == nil {
		logger = log.New().WithField("component", "jsonfile-store")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		logger.WithError(err).WithField("path", dir).Error("failed to create data directory")
	}
	return &Store{dir: dir, logger: logger}
}

// Name возвращает имя драйвера.
func (s *Store) Name() string { return driverName }

// Dir возвращает каталог данных.
func (s *Store) Dir() string { return s.dir }

// Path возвращает путь к файлу хранилища kind.
func (s *Store) Path(kind domain.StoreKind) string {
	return filepath.Join(s.dir, kind.FileName())
}

// EnsureExists создаёт пустой файл хранилища, если его нет.
func (s *Store) EnsureExists(kind domain.StoreKind) {
	EnsureFile(s.Path(kind), s.logger)
}

// ReadAll читает записи хранилища kind.
func (s *Store) ReadAll(kind domain.StoreKind) []domain.Record {
	return ReadFile(s.Path(kind), s.logger)
}

// WriteAll полностью перезаписывает файл хранилища kind.
func (s *Store) WriteAll(kind domain.StoreKind, records []domain.Record) error {
	return WriteFile(s.Path(kind), records, s.logger)
}

// Check проверяет, что каталог данных существует и доступен.
func (s *Store) Check() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", s.dir)
	}
	return nil
}

// EnsureFile создаёт файл со списком [] по пути path, если файла нет.
func EnsureFile(path string, logger *log.Entry) {
	if _, err := os.Stat(path); err == nil {
		return
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.WithError(err).WithField("path", path).Error("failed to stat store file")
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		logger.WithError(err).WithField("path", path).Error("failed to create store directory")
		return
	}
	if err := writeAtomic(path, []byte("[]\n")); err != nil {
		logger.WithError(err).WithField("path", path).Error("failed to create empty store file")
		return
	}
	logger.WithField("path", path).Debug("created empty store file")
}

// ReadFile читает список записей из path. Отсутствующий файл создаётся пустым.
// Любая проблема даёт пустой список и запись в лог.
func ReadFile(path string, logger *log.Entry) []domain.Record {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		EnsureFile(path, logger)
		return []domain.Record{}
	}
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("failed to read store file")
		return []domain.Record{}
	}
	return codec.ParseList(data, path, logger)
}

// WriteFile заменяет содержимое path списком records. Запись идёт во временный
// файл того же каталога, который затем переименовывается поверх целевого.
func WriteFile(path string, records []domain.Record, logger *log.Entry) error {
	data, err := codec.MarshalList(records)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("failed to encode store file")
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		logger.WithError(err).WithField("path", path).Error("failed to write store file")
		return err
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
