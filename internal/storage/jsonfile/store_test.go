package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

func loggerForTests() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.DebugLevel)
	return logger.WithField("component", "jsonfile-test")
}

func TestStore_ReadAllCreatesMissingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := New(dir, loggerForTests())

	records := store.ReadAll(domain.StoreHotels)
	if len(records) != 0 {
		t.Fatalf("expected empty store, got %d records", len(records))
	}

	data, err := os.ReadFile(filepath.Join(dir, "hotels.json"))
	if err != nil {
		t.Fatalf("expected hotels.json to be created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty list, got %q", data)
	}
}

func TestStore_EnsureExistsKeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "customers.json")
	if err := os.WriteFile(path, []byte(`[{"id": 1}]`), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := New(dir, loggerForTests())
	store.EnsureExists(domain.StoreCustomers)

	if got := store.ReadAll(domain.StoreCustomers); len(got) != 1 {
		t.Fatalf("expected existing record to survive, got %d", len(got))
	}
}

func TestStore_WriteAllReplacesContent(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, loggerForTests())

	first := []domain.Record{{"id": 1, "nombre": "A"}, {"id": 2, "nombre": "B"}}
	if err := store.WriteAll(domain.StoreHotels, first); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	second := []domain.Record{{"id": 2, "nombre": "B"}}
	if err := store.WriteAll(domain.StoreHotels, second); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	got := store.ReadAll(domain.StoreHotels)
	if len(got) != 1 || !got[0].HasID(2) {
		t.Fatalf("expected only record 2, got %v", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestStore_CorruptedFilesReadAsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "invalid syntax", content: `[{"id": `, want: 0},
		{name: "not a list", content: `{"id": 1}`, want: 0},
		{name: "scalar elements skipped", content: `[1, {"id": 2}, "x"]`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "reservations.json"), []byte(tt.content), 0o644); err != nil {
				t.Fatalf("seed file: %v", err)
			}

			store := New(dir, loggerForTests())
			if got := store.ReadAll(domain.StoreReservations); len(got) != tt.want {
				t.Fatalf("expected %d records, got %d", tt.want, len(got))
			}
		})
	}
}

func TestStore_WriteAllToMissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, loggerForTests())
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}

	if err := store.WriteAll(domain.StoreHotels, []domain.Record{{"id": 1}}); err == nil {
		t.Fatal("expected write error for removed directory")
	}
	if err := store.Check(); err == nil {
		t.Fatal("expected Check to report missing directory")
	}
}

func TestStore_PreservesUnicode(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, loggerForTests())

	if err := store.WriteAll(domain.StoreCustomers, []domain.Record{{"id": 1, "nombre": "José Ñúñez"}}); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	data, err := os.ReadFile(store.Path(domain.StoreCustomers))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "José Ñúñez") {
		t.Fatalf("expected verbatim unicode, got %s", data)
	}
}
