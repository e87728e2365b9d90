package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	migrationsDir = "sql/migrations"
	// Ключ advisory-блокировки: одновременно миграции выполняет один процесс.
	migrationLockKey = int64(0x686f74656c726573)
	migrationTimeout = 5 * time.Second

	schemaMigrationsDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

var migrationLabel = regexp.MustCompile(`^[a-z0-9_]+$`)

// Migration: пара up/down скриптов одной версии схемы record_stores.
type Migration struct {
	Version int64
	Name    string
	up      string
	down    string
}

// String возвращает имя в формате файлов: 0001_record_stores.
func (m Migration) String() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

// MigrationState: текущее состояние схемы.
type MigrationState struct {
	Version int64
	Applied int
	Pending []Migration
}

// Migrations возвращает встроенные миграции по возрастанию версии.
func Migrations() ([]Migration, error) {
	return parseMigrations(migrationsFS, migrationsDir)
}

// MigrateUp применяет не более steps ещё не применённых миграций
// (steps <= 0 означает все) и возвращает применённые.
func (s *Store) MigrateUp(ctx context.Context, steps int) ([]Migration, error) {
	var done []Migration
	err := s.withMigrationLock(ctx, func(conn *sql.Conn) error {
		migrations, err := Migrations()
		if err != nil {
			return err
		}
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if steps > 0 && len(done) >= steps {
				break
			}
			if applied[m.Version] {
				continue
			}
			if err := runMigration(ctx, conn, m, m.up,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
				return err
			}
			done = append(done, m)
		}
		return nil
	})
	return done, err
}

// MigrateDown откатывает steps последних применённых миграций.
// steps <= 0 означает один шаг: откат всей схемы нужно запросить явно.
func (s *Store) MigrateDown(ctx context.Context, steps int) ([]Migration, error) {
	if steps <= 0 {
		steps = 1
	}

	var done []Migration
	err := s.withMigrationLock(ctx, func(conn *sql.Conn) error {
		migrations, err := Migrations()
		if err != nil {
			return err
		}
		byVersion := make(map[int64]Migration, len(migrations))
		for _, m := range migrations {
			byVersion[m.Version] = m
		}

		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}
		versions := make([]int64, 0, len(applied))
		for version := range applied {
			versions = append(versions, version)
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })

		for _, version := range versions {
			if len(done) >= steps {
				break
			}
			m, ok := byVersion[version]
			if !ok {
				return fmt.Errorf("cannot roll back unknown migration version %d", version)
			}
			if err := runMigration(ctx, conn, m, m.down,
				`DELETE FROM schema_migrations WHERE version = $1`, m.Version); err != nil {
				return err
			}
			done = append(done, m)
		}
		return nil
	})
	return done, err
}

// MigrationStatus возвращает последнюю применённую версию и список ожидающих миграций.
func (s *Store) MigrationStatus(ctx context.Context) (MigrationState, error) {
	if s == nil || s.db == nil {
		return MigrationState{}, errNotInitialized
	}

	queryCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	conn, err := s.db.Conn(queryCtx)
	if err != nil {
		return MigrationState{}, fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(queryCtx, schemaMigrationsDDL); err != nil {
		return MigrationState{}, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	applied, err := appliedVersions(queryCtx, conn)
	if err != nil {
		return MigrationState{}, err
	}
	migrations, err := Migrations()
	if err != nil {
		return MigrationState{}, err
	}

	state := MigrationState{Applied: len(applied)}
	for version := range applied {
		state.Version = max(state.Version, version)
	}
	for _, m := range migrations {
		if !applied[m.Version] {
			state.Pending = append(state.Pending, m)
		}
	}
	return state, nil
}

var errNotInitialized = errors.New("postgres store is not initialized")

// withMigrationLock выполняет fn на отдельном соединении под advisory-блокировкой.
func (s *Store) withMigrationLock(ctx context.Context, fn func(conn *sql.Conn) error) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, schemaMigrationsDDL); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return fn(conn)
}

// runMigration выполняет скрипт и правку schema_migrations в одной транзакции.
func runMigration(ctx context.Context, conn *sql.Conn, m Migration, script, bookkeeping string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m, err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %s: %w", m, err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", m, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m, err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// parseMigrations читает файлы вида 0001_name.up.sql / 0001_name.down.sql из dir.
func parseMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int64]*Migration)
	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, ".sql") {
			continue
		}

		stem, direction, ok := cutLast(strings.TrimSuffix(fileName, ".sql"), ".")
		versionText, label, hasLabel := strings.Cut(stem, "_")
		version, convErr := strconv.ParseInt(versionText, 10, 64)
		if !ok || !hasLabel || convErr != nil || version <= 0 || !migrationLabel.MatchString(label) {
			return nil, fmt.Errorf("invalid migration file name: %s", fileName)
		}

		body, err := fs.ReadFile(fsys, path.Join(dir, fileName))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fileName, err)
		}
		script := strings.TrimSpace(string(body))
		if script == "" {
			return nil, fmt.Errorf("migration file is empty: %s", fileName)
		}

		m, seen := byVersion[version]
		if !seen {
			m = &Migration{Version: version, Name: label}
			byVersion[version] = m
		}
		if m.Name != label {
			return nil, fmt.Errorf("migration %d has two names: %s and %s", version, m.Name, label)
		}

		var target *string
		switch direction {
		case "up":
			target = &m.up
		case "down":
			target = &m.down
		default:
			return nil, fmt.Errorf("invalid migration direction in %s", fileName)
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", direction, version)
		}
		*target = script
	}

	if len(byVersion) == 0 {
		return nil, errors.New("no migration files found")
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" || m.down == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", m)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
