// Команда migrate управляет схемой record_stores в PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/postgres"
)

const (
	envPostgresDSN = "HOTELRES_POSTGRES_DSN"
	defaultTimeout = 30 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

// run возвращает код выхода процесса.
func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		direction string
		steps     int
		dsn       string
	)
	flags.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flags.IntVar(&steps, "steps", 0, "number of migrations to apply/roll back (0 = all for up, 1 for down)")
	flags.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: "+envPostgresDSN+")")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	fail := func(format string, args ...any) int {
		_, _ = fmt.Fprintf(stderr, format+"\n", args...)
		return 1
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	switch direction {
	case "up", "down", "status":
	default:
		return fail("unsupported direction: %s (use up|down|status)", direction)
	}

	if dsn = strings.TrimSpace(dsn); dsn == "" {
		dsn = strings.TrimSpace(getenv(envPostgresDSN))
	}
	if dsn == "" {
		return fail("%s (or -dsn) is required", envPostgresDSN)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return fail("open postgres store: %v", err)
	}
	defer store.Close()

	var changed []postgres.Migration
	switch direction {
	case "up":
		changed, err = store.MigrateUp(ctx, steps)
	case "down":
		changed, err = store.MigrateDown(ctx, steps)
	}
	if err != nil {
		return fail("migrate %s failed: %v", direction, err)
	}
	for _, m := range changed {
		_, _ = fmt.Fprintf(stdout, "%s %s\n", direction, m)
	}

	state, err := store.MigrationStatus(ctx)
	if err != nil {
		return fail("migration status failed: %v", err)
	}
	_, _ = fmt.Fprintln(stdout, formatState(state))
	if direction == "status" && state.Version > 0 {
		_, _ = fmt.Fprintln(stdout, storeSummary(store, stderr))
	}
	return 0
}

func formatState(state postgres.MigrationState) string {
	line := fmt.Sprintf("schema version=%d applied=%d", state.Version, state.Applied)
	if len(state.Pending) == 0 {
		return line + " pending=none"
	}
	names := make([]string, 0, len(state.Pending))
	for _, m := range state.Pending {
		names = append(names, m.String())
	}
	return line + " pending=" + strings.Join(names, ",")
}

// storeSummary возвращает число записей в каждом хранилище.
func storeSummary(store *postgres.Store, logOut io.Writer) string {
	logger := log.New()
	logger.SetOutput(logOut)
	records := postgres.NewRecordStore(store, logger.WithField("component", "migrate"))

	parts := make([]string, 0, len(domain.StoreKinds()))
	for _, kind := range domain.StoreKinds() {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, len(records.ReadAll(kind))))
	}
	return "record stores: " + strings.Join(parts, " ")
}
