package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// run выполняет hotelctl поверх JSON-хранилища в dir.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--driver", "json", "--data-dir", dir}, args...)
	err := execute(full, &out, &errOut)
	return out.String(), errOut.String(), err
}

func runJSON(t *testing.T, dir string, target any, args ...string) {
	t.Helper()
	out, errOut, err := run(t, dir, append(args, "--json")...)
	require.NoError(t, err, "stderr: %s", errOut)
	require.NoError(t, json.Unmarshal([]byte(out), target), "output: %s", out)
}

func seed(t *testing.T, dir string) {
	t.Helper()
	var created map[string]int
	runJSON(t, dir, &created, "hotel", "create", "--name", "Hotel A", "--location", "Puebla", "--rooms", "10")
	require.Equal(t, 1, created["id"])
	runJSON(t, dir, &created, "customer", "create", "--name", "Ana", "--email", "ana@test.com")
	require.Equal(t, 1, created["id"])
}

func TestReservationLifecycle(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	var created map[string]int
	runJSON(t, dir, &created, "reservation", "create",
		"--customer", "1", "--hotel", "1", "--rooms", "3", "--start", "2026-02-22", "--end", "2026-02-24")
	require.Equal(t, 1, created["id"])

	var hotel map[string]any
	runJSON(t, dir, &hotel, "hotel", "get", "1")
	require.EqualValues(t, 7, hotel["available_rooms"])

	var result map[string]bool
	runJSON(t, dir, &result, "reservation", "cancel", "1")
	require.True(t, result["cancelled"])

	runJSON(t, dir, &result, "reservation", "cancel", "1")
	require.False(t, result["cancelled"])

	runJSON(t, dir, &hotel, "hotel", "get", "1")
	require.EqualValues(t, 10, hotel["available_rooms"])

	var reservation map[string]any
	runJSON(t, dir, &reservation, "res", "get", "1")
	require.Equal(t, "cancelled", reservation["status"])
}

func TestReservationCreate_Overbooking(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	_, _, err := run(t, dir, "reservation", "create",
		"--customer", "1", "--hotel", "1", "--rooms", "11", "--start", "a", "--end", "b")
	require.ErrorIs(t, err, domain.ErrInsufficientAvailability)

	var reservations []map[string]any
	runJSON(t, dir, &reservations, "reservation", "list")
	require.Empty(t, reservations)
}

func TestReservationCreate_RequiresFlags(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, dir, "reservation", "create", "--customer", "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required flag")
}

func TestHotelCommands_TableOutput(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, _, err := run(t, dir, "hotel", "list")
	require.NoError(t, err)
	require.Contains(t, out, "LOCATION")
	require.Contains(t, out, "Hotel A")
	require.Contains(t, out, "10/10")

	out, _, err = run(t, dir, "hotel", "update", "1", "--location", "Cholula")
	require.NoError(t, err)
	require.Contains(t, out, "Hotel 1 updated")

	var hotel map[string]any
	runJSON(t, dir, &hotel, "hotel", "get", "1")
	require.Equal(t, "Hotel A", hotel["name"])
	require.Equal(t, "Cholula", hotel["location"])

	out, _, err = run(t, dir, "hotel", "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Hotel 1 deleted")

	out, _, err = run(t, dir, "hotel", "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Hotel 1 not deleted")

	out, _, err = run(t, dir, "hotel", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No hotels")
}

func TestCustomerCommands(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	var result map[string]bool
	runJSON(t, dir, &result, "customer", "update", "1", "--email", "ana@example.com")
	require.True(t, result["updated"])

	var customers []map[string]any
	runJSON(t, dir, &customers, "customer", "list")
	require.Len(t, customers, 1)
	require.Equal(t, "ana@example.com", customers[0]["email"])

	_, _, err := run(t, dir, "customer", "update", "1", "--name", "  ")
	require.ErrorIs(t, err, domain.ErrInvalidField)

	_, _, err = run(t, dir, "customer", "get", "99")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = run(t, dir, "customer", "get", "abc")
	require.EqualError(t, err, `invalid id "abc"`)
}

func TestAudit(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, _, err := run(t, dir, "audit", "--strict")
	require.NoError(t, err)
	require.Contains(t, out, "Inventory is consistent")

	// Бронирование без списания комнат: available больше ожидаемого на 2.
	reservations := `[{"id": 1, "hotel_id": 1, "customer_id": 1, "habitaciones": 2,
		"fecha_inicio": "a", "fecha_fin": "b", "estatus": "activa"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reservations.json"), []byte(reservations), 0o644))

	var report struct {
		DriftedHotels int `json:"drifted_hotels"`
		Hotels        []struct {
			Drift int `json:"drift"`
		} `json:"hotels"`
	}
	runJSON(t, dir, &report, "audit")
	require.Equal(t, 1, report.DriftedHotels)
	require.Len(t, report.Hotels, 1)
	require.Equal(t, 2, report.Hotels[0].Drift)

	_, _, err = run(t, dir, "audit", "--strict")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "drift in 1 hotel"))
}

func TestUnsupportedDriver(t *testing.T) {
	var out, errOut bytes.Buffer
	err := execute([]string{"--driver", "mongo", "hotel", "list"}, &out, &errOut)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported storage driver")
}

func TestMemoryDriverStartsEmpty(t *testing.T) {
	var out, errOut bytes.Buffer
	err := execute([]string{"--driver", "memory", "--json", "hotel", "list"}, &out, &errOut)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, out.String())
}
