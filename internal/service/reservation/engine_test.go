package reservation

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/metrics"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/jsonfile"
	"github.com/vladislavdragonenkov/hotelres/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	err    error
}

func (p *recordingPublisher) PublishReservationEvent(event domain.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []domain.ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ReservationEvent(nil), p.events...)
}

func loggerForTests() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.DebugLevel)
	return logger.WithField("component", "engine-test")
}

func newEngineForTests(t *testing.T) (*Engine, *memory.RecordStore, *recordingPublisher) {
	t.Helper()
	store := memory.NewRecordStore(loggerForTests())
	publisher := &recordingPublisher{}
	engine := NewEngineWithMetrics(store, publisher, metrics.NewReservationMetricsWithRegisterer(prometheus.NewRegistry()), loggerForTests())
	engine.now = func() time.Time { return time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC) }
	return engine, store, publisher
}

func seedHotelAndCustomer(t *testing.T, engine *Engine, totalRooms int) (int, int) {
	t.Helper()
	hotelID, err := engine.CreateHotel("Hotel A", "Puebla", totalRooms)
	require.NoError(t, err)
	customerID, err := engine.CreateCustomer("Ana", "ana@test.com")
	require.NoError(t, err)
	return hotelID, customerID
}

func reservationRequest(customerID, hotelID, rooms int) domain.ReservationRequest {
	return domain.ReservationRequest{
		CustomerID: customerID,
		HotelID:    hotelID,
		Rooms:      rooms,
		StartDate:  "2026-02-22",
		EndDate:    "2026-02-24",
	}
}

func requireAvailable(t *testing.T, engine *Engine, hotelID, want int) {
	t.Helper()
	hotel, err := engine.GetHotel(hotelID)
	require.NoError(t, err)
	require.Equal(t, want, hotel.AvailableRooms())
	require.GreaterOrEqual(t, hotel.AvailableRooms(), 0)
	require.LessOrEqual(t, hotel.AvailableRooms(), hotel.TotalRooms())
}

func TestEngine_BookingReducesAvailability(t *testing.T) {
	engine, _, publisher := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 10)
	requireAvailable(t, engine, hotelID, 10)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 3))
	require.NoError(t, err)
	require.Equal(t, 1, reservationID)
	requireAvailable(t, engine, hotelID, 7)

	reservation, err := engine.GetReservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationStatusActive, reservation.Status())
	require.Equal(t, 3, reservation.Rooms())

	events := publisher.Events()
	require.Len(t, events, 1)
	require.Equal(t, domain.ReservationEventCreated, events[0].Type)
	require.Equal(t, 7, events[0].AvailableRooms)
	require.True(t, events[0].InventoryUpdated)
}

func TestEngine_CancellationRestoresAvailability(t *testing.T) {
	engine, _, publisher := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 5)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 2))
	require.NoError(t, err)
	requireAvailable(t, engine, hotelID, 3)

	cancelled, err := engine.CancelReservation(reservationID)
	require.NoError(t, err)
	require.True(t, cancelled)
	requireAvailable(t, engine, hotelID, 5)

	reservation, err := engine.GetReservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationStatusCancelled, reservation.Status())

	events := publisher.Events()
	require.Len(t, events, 2)
	require.Equal(t, domain.ReservationEventCancelled, events[1].Type)
	require.Equal(t, 5, events[1].AvailableRooms)
}

func TestEngine_CancelIsIdempotent(t *testing.T) {
	engine, _, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 4)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 1))
	require.NoError(t, err)

	first, err := engine.CancelReservation(reservationID)
	require.NoError(t, err)
	require.True(t, first)
	requireAvailable(t, engine, hotelID, 4)

	second, err := engine.CancelReservation(reservationID)
	require.NoError(t, err)
	require.False(t, second)
	requireAvailable(t, engine, hotelID, 4)
}

func TestEngine_CancelMissingReservation(t *testing.T) {
	engine, _, _ := newEngineForTests(t)

	cancelled, err := engine.CancelReservation(42)
	require.NoError(t, err)
	require.False(t, cancelled)

	_, err = engine.CancelReservation(0)
	require.ErrorIs(t, err, domain.ErrInvalidField)
}

func TestEngine_CancelClampsToTotal(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 5)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 2))
	require.NoError(t, err)

	// Внешняя правка: available снова равно total, хотя бронирование активно.
	hotels := store.ReadAll(domain.StoreHotels)
	hotels[0][domain.FieldAvailableRooms] = 5
	require.NoError(t, store.WriteAll(domain.StoreHotels, hotels))

	cancelled, err := engine.CancelReservation(reservationID)
	require.NoError(t, err)
	require.True(t, cancelled)
	requireAvailable(t, engine, hotelID, 5)
}

func TestEngine_OverbookingRejected(t *testing.T) {
	engine, _, publisher := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 1)

	_, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 2))
	require.ErrorIs(t, err, domain.ErrInsufficientAvailability)
	requireAvailable(t, engine, hotelID, 1)
	require.Empty(t, engine.ListReservations())
	require.Empty(t, publisher.Events())
}

func TestEngine_DanglingReferenceTolerated(t *testing.T) {
	engine, _, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 3)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 1))
	require.NoError(t, err)
	before, err := engine.GetReservation(reservationID)
	require.NoError(t, err)

	removed, err := engine.DeleteHotel(hotelID)
	require.NoError(t, err)
	require.True(t, removed)

	after, err := engine.GetReservation(reservationID)
	require.NoError(t, err)
	require.Equal(t, before, after)

	// Отмена без отеля успешна, комнаты просто некуда вернуть.
	cancelled, err := engine.CancelReservation(reservationID)
	require.NoError(t, err)
	require.True(t, cancelled)
}

func TestEngine_CreateReservationRejections(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 5)

	tests := []struct {
		name    string
		req     domain.ReservationRequest
		wantErr error
	}{
		{name: "zero rooms", req: reservationRequest(customerID, hotelID, 0), wantErr: domain.ErrInvalidField},
		{name: "negative customer", req: reservationRequest(-1, hotelID, 1), wantErr: domain.ErrInvalidField},
		{name: "blank start date", req: domain.ReservationRequest{CustomerID: customerID, HotelID: hotelID, Rooms: 1, StartDate: " ", EndDate: "x"}, wantErr: domain.ErrInvalidField},
		{name: "unknown customer", req: reservationRequest(99, hotelID, 1), wantErr: domain.ErrNotFound},
		{name: "unknown hotel", req: reservationRequest(customerID, 99, 1), wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateReservation(tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.Empty(t, store.ReadAll(domain.StoreReservations))
	requireAvailable(t, engine, hotelID, 5)
}

func TestEngine_CreateReservationCorruptedHotel(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	_, customerID := seedHotelAndCustomer(t, engine, 5)
	store.SetRaw(domain.StoreHotels, []byte(`[{"id": 1, "nombre": "Hotel X"}]`))

	_, err := engine.CreateReservation(reservationRequest(customerID, 1, 1))
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, err, domain.ErrCorrupted)
	require.Empty(t, store.ReadAll(domain.StoreReservations))
}

type flakyAvailabilityStore struct {
	*memory.RecordStore
	hotelReads int
}

// ReadAll портит available при повторном чтении отелей, имитируя внешнюю правку файла.
func (s *flakyAvailabilityStore) ReadAll(kind domain.StoreKind) []domain.Record {
	records := s.RecordStore.ReadAll(kind)
	if kind == domain.StoreHotels {
		s.hotelReads++
		if s.hotelReads > 1 && len(records) > 0 {
			records[0][domain.FieldAvailableRooms] = "many"
		}
	}
	return records
}

func TestEngine_CreateReservationNonIntegerAvailabilityOnDebit(t *testing.T) {
	base := memory.NewRecordStore(loggerForTests())
	seed := NewEngineWithoutMetrics(base, nil, loggerForTests())
	hotelID, customerID := seedHotelAndCustomer(t, seed, 5)

	store := &flakyAvailabilityStore{RecordStore: base}
	engine := NewEngineWithoutMetrics(store, nil, loggerForTests())

	_, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 1))
	require.ErrorIs(t, err, domain.ErrCorrupted)
	require.Empty(t, base.ReadAll(domain.StoreReservations))
}

func TestEngine_CancelWithCorruptedHotelStillSucceeds(t *testing.T) {
	engine, store, publisher := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 5)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 2))
	require.NoError(t, err)

	hotels := store.ReadAll(domain.StoreHotels)
	hotels[0][domain.FieldTotalRooms] = "five"
	require.NoError(t, store.WriteAll(domain.StoreHotels, hotels))

	cancelled, err := engine.CancelReservation(reservationID)
	require.NoError(t, err)
	require.True(t, cancelled)

	raw := store.ReadAll(domain.StoreHotels)
	require.Equal(t, json.Number("3"), raw[0][domain.FieldAvailableRooms])

	events := publisher.Events()
	require.False(t, events[len(events)-1].InventoryUpdated)
}

func TestEngine_CancelCorruptedReservationIsAbsent(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	store.SetRaw(domain.StoreReservations, []byte(`[{"id": 1, "hotel_id": 1, "estatus": "active"}]`))

	cancelled, err := engine.CancelReservation(1)
	require.NoError(t, err)
	require.False(t, cancelled)

	_, err = engine.GetReservation(1)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, err, domain.ErrCorrupted)
}

func TestEngine_LegacyStatusesAreUnderstood(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	store.SetRaw(domain.StoreHotels, []byte(`[{"id": 1, "nombre": "H", "ubicacion": "L", "habitaciones_total": 4, "habitaciones_disponibles": 2}]`))
	store.SetRaw(domain.StoreReservations, []byte(`[
		{"id": 1, "hotel_id": 1, "customer_id": 1, "habitaciones": 2, "fecha_inicio": "a", "fecha_fin": "b", "estatus": "activa"},
		{"id": 2, "hotel_id": 1, "customer_id": 1, "habitaciones": 1, "fecha_inicio": "a", "fecha_fin": "b", "estatus": "cancelada"}
	]`))

	cancelled, err := engine.CancelReservation(2)
	require.NoError(t, err)
	require.False(t, cancelled)

	cancelled, err = engine.CancelReservation(1)
	require.NoError(t, err)
	require.True(t, cancelled)
	requireAvailable(t, engine, 1, 4)
}

func TestEngine_HotelCRUD(t *testing.T) {
	engine, store, _ := newEngineForTests(t)

	_, err := engine.CreateHotel("  ", "Puebla", 3)
	require.ErrorIs(t, err, domain.ErrInvalidField)
	_, err = engine.CreateHotel("Hotel", "Puebla", -1)
	require.ErrorIs(t, err, domain.ErrInvalidField)

	id, err := engine.CreateHotel(" Hotel A ", "Puebla", 0)
	require.NoError(t, err)
	hotel, err := engine.GetHotel(id)
	require.NoError(t, err)
	require.Equal(t, "Hotel A", hotel.Name())
	require.Equal(t, 0, hotel.AvailableRooms())

	newName := "Hotel B"
	changed, err := engine.UpdateHotel(id, domain.HotelUpdate{Name: &newName})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = engine.UpdateHotel(id, domain.HotelUpdate{Name: &newName})
	require.NoError(t, err)
	require.False(t, changed, "same value must not count as a change")

	blank := " "
	_, err = engine.UpdateHotel(id, domain.HotelUpdate{Location: &blank})
	require.ErrorIs(t, err, domain.ErrInvalidField)

	changed, err = engine.UpdateHotel(77, domain.HotelUpdate{Name: &newName})
	require.NoError(t, err)
	require.False(t, changed)

	removed, err := engine.DeleteHotel(id)
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = engine.DeleteHotel(id)
	require.NoError(t, err)
	require.False(t, removed)

	_, err = engine.GetHotel(id)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.False(t, errors.Is(err, domain.ErrCorrupted))
	require.Empty(t, store.ReadAll(domain.StoreHotels))
}

func TestEngine_CustomerCRUD(t *testing.T) {
	engine, _, _ := newEngineForTests(t)

	id, err := engine.CreateCustomer("Ana", "ana@test.com")
	require.NoError(t, err)
	second, err := engine.CreateCustomer("Luis", "luis@test.com")
	require.NoError(t, err)
	require.Equal(t, id+1, second)

	email := "ana@example.com"
	changed, err := engine.UpdateCustomer(id, domain.CustomerUpdate{Email: &email})
	require.NoError(t, err)
	require.True(t, changed)

	customer, err := engine.GetCustomer(id)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", customer.Email())

	removed, err := engine.DeleteCustomer(id)
	require.NoError(t, err)
	require.True(t, removed)
	require.Len(t, engine.ListCustomers(), 1)

	_, err = engine.GetCustomer(-3)
	require.ErrorIs(t, err, domain.ErrInvalidField)
}

func TestEngine_IDsContinueAfterNonIntegerIDs(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	store.SetRaw(domain.StoreCustomers, []byte(`[{"id": 3, "nombre": "A", "email": "a"}, {"id": 7, "nombre": "B", "email": "b"}, {"id": "bad"}]`))

	id, err := engine.CreateCustomer("C", "c@test.com")
	require.NoError(t, err)
	require.Equal(t, 8, id)
	require.Len(t, engine.ListCustomers(), 3)
}

func TestEngine_WriteFailuresAreNotPropagated(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	store.FailWrites(domain.StoreHotels, errors.New("disk full"))

	id, err := engine.CreateHotel("Hotel A", "Puebla", 2)
	require.NoError(t, err)
	require.Equal(t, 1, id)

	_, err = engine.GetHotel(id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_PublishFailureDoesNotFailOperation(t *testing.T) {
	engine, _, publisher := newEngineForTests(t)
	publisher.err = errors.New("broker down")
	hotelID, customerID := seedHotelAndCustomer(t, engine, 2)

	_, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 1))
	require.NoError(t, err)
	requireAvailable(t, engine, hotelID, 1)
}

func TestEngine_AuditInventory(t *testing.T) {
	engine, store, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 10)

	_, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 3))
	require.NoError(t, err)
	cancelID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 2))
	require.NoError(t, err)
	_, err = engine.CancelReservation(cancelID)
	require.NoError(t, err)

	report := engine.AuditInventory()
	require.Len(t, report.Hotels, 1)
	require.Equal(t, 0, report.DriftedHotels)
	require.Equal(t, 3, report.Hotels[0].ReservedRooms)
	require.Equal(t, 7, report.Hotels[0].ExpectedAvailable)

	// Имитация падения между списанием комнат и записью бронирования.
	hotels := store.ReadAll(domain.StoreHotels)
	hotels[0][domain.FieldAvailableRooms] = 5
	require.NoError(t, store.WriteAll(domain.StoreHotels, hotels))

	report = engine.AuditInventory()
	require.Equal(t, 1, report.DriftedHotels)
	require.Equal(t, -2, report.Hotels[0].Drift)

	hotel, err := engine.GetHotel(hotelID)
	require.NoError(t, err)
	require.Equal(t, 5, hotel.AvailableRooms(), "audit must not modify inventory")
}

func TestEngine_AuditReportsOrphans(t *testing.T) {
	engine, _, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 2)

	reservationID, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 1))
	require.NoError(t, err)
	_, err = engine.DeleteHotel(hotelID)
	require.NoError(t, err)

	report := engine.AuditInventory()
	require.Empty(t, report.Hotels)
	require.Equal(t, []int{reservationID}, report.OrphanReservations)
}

func TestEngine_InvariantHoldsAcrossSequence(t *testing.T) {
	engine, _, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 6)

	var ids []int
	for _, rooms := range []int{1, 2, 3, 1} {
		id, err := engine.CreateReservation(reservationRequest(customerID, hotelID, rooms))
		if errors.Is(err, domain.ErrInsufficientAvailability) {
			continue
		}
		require.NoError(t, err)
		ids = append(ids, id)
	}
	requireAvailable(t, engine, hotelID, 0)

	for _, id := range ids {
		_, err := engine.CancelReservation(id)
		require.NoError(t, err)
		hotel, err := engine.GetHotel(hotelID)
		require.NoError(t, err)
		require.LessOrEqual(t, hotel.AvailableRooms(), hotel.TotalRooms())
	}
	requireAvailable(t, engine, hotelID, 6)
}

func TestEngine_ConcurrentReservationsNeverOverbook(t *testing.T) {
	engine, _, _ := newEngineForTests(t)
	hotelID, customerID := seedHotelAndCustomer(t, engine, 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, succeeded)
	requireAvailable(t, engine, hotelID, 0)
	require.Len(t, engine.ListReservations(), 10)
}

func TestEngine_WithFlatFileStore(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngineWithoutMetrics(jsonfile.New(dir, loggerForTests()), nil, loggerForTests())
	engine.EnsureStores()
	hotelID, customerID := seedHotelAndCustomer(t, engine, 10)

	_, err := engine.CreateReservation(reservationRequest(customerID, hotelID, 3))
	require.NoError(t, err)

	reopened := NewEngineWithoutMetrics(jsonfile.New(dir, loggerForTests()), nil, loggerForTests())
	requireAvailable(t, reopened, hotelID, 7)
	require.Equal(t, "json", reopened.StoreName())
}
