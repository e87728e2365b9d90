package reservation

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/metrics"
)

// CreateReservation бронирует комнаты и возвращает id бронирования.
//
// Сначала списываются комнаты отеля, затем добавляется бронирование: это две
// независимые записи без общей транзакции.
func (e *Engine) CreateReservation(req domain.ReservationRequest) (int, error) {
	defer e.observe(opCreateReservation)()

	req, err := req.Validate()
	if err != nil {
		e.metrics.RecordReservationRejected(metrics.RejectInvalidField)
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.getCustomerLocked(req.CustomerID); err != nil {
		e.metrics.RecordReservationRejected(metrics.RejectCustomerNotFound)
		return 0, err
	}

	hotel, err := e.getHotelLocked(req.HotelID)
	if err != nil {
		reason := metrics.RejectHotelNotFound
		if errors.Is(err, domain.ErrCorrupted) {
			reason = metrics.RejectHotelCorrupted
		}
		e.metrics.RecordReservationRejected(reason)
		return 0, err
	}

	if hotel.AvailableRooms() < req.Rooms {
		e.metrics.RecordReservationRejected(metrics.RejectInsufficientRooms)
		return 0, fmt.Errorf("hotel %d has %d rooms available, requested %d: %w",
			hotel.ID(), hotel.AvailableRooms(), req.Rooms, domain.ErrInsufficientAvailability)
	}

	available, err := e.debitRooms(req.HotelID, req.Rooms)
	if err != nil {
		e.metrics.RecordReservationRejected(metrics.RejectHotelCorrupted)
		return 0, err
	}

	records := e.store.ReadAll(domain.StoreReservations)
	reservation, err := domain.NewActiveReservation(domain.NextID(records), req)
	if err != nil {
		return 0, err
	}
	records = append(records, reservation.ToRecord())
	e.write(domain.StoreReservations, records)

	e.metrics.RecordReservationCreated()
	e.logger.WithFields(log.Fields{
		"reservation_id": reservation.ID(),
		"hotel_id":       reservation.HotelID(),
		"customer_id":    reservation.CustomerID(),
		"rooms":          reservation.Rooms(),
		"available":      available,
	}).Info("reservation created")

	e.publish(domain.ReservationEvent{
		Type:             domain.ReservationEventCreated,
		ReservationID:    reservation.ID(),
		HotelID:          reservation.HotelID(),
		CustomerID:       reservation.CustomerID(),
		Rooms:            reservation.Rooms(),
		AvailableRooms:   available,
		InventoryUpdated: true,
		OccurredAt:       e.now().UTC(),
	})
	return reservation.ID(), nil
}

// debitRooms перечитывает хранилище отелей и списывает rooms у найденного отеля.
func (e *Engine) debitRooms(hotelID, rooms int) (int, error) {
	records := e.store.ReadAll(domain.StoreHotels)
	idx := findByID(records, hotelID)
	if idx < 0 {
		return 0, notFound("hotel", hotelID)
	}

	available, ok := domain.IntValue(records[idx][domain.FieldAvailableRooms])
	if !ok {
		e.logger.WithFields(log.Fields{
			"hotel_id": hotelID,
			"field":    domain.FieldAvailableRooms,
		}).Error("hotel availability is not an integer")
		e.metrics.RecordCorruptedRecord(string(domain.StoreHotels))
		return 0, fmt.Errorf("hotel %d %s is not an integer: %w", hotelID, domain.FieldAvailableRooms, domain.ErrCorrupted)
	}

	available -= rooms
	records[idx][domain.FieldAvailableRooms] = available
	e.write(domain.StoreHotels, records)
	return available, nil
}

// CancelReservation отменяет активное бронирование и возвращает комнаты отелю.
// false: бронирования нет, оно повреждено или уже отменено (повторная отмена ничего не меняет).
// Возврат комнат выполняется по возможности: если отель пропал или повреждён,
// отмена всё равно считается успешной.
func (e *Engine) CancelReservation(id int) (bool, error) {
	defer e.observe(opCancelReservation)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreReservations)
	idx := findByID(records, id)
	if idx < 0 {
		return false, nil
	}
	current, ok := codec.DecodeReservation(records[idx], e.logger)
	if !ok {
		e.metrics.RecordCorruptedRecord(string(domain.StoreReservations))
		return false, nil
	}
	cancelled, changed := current.Cancel()
	if !changed {
		return false, nil
	}

	records[idx][domain.FieldStatus] = string(cancelled.Status())
	e.write(domain.StoreReservations, records)
	e.metrics.RecordReservationCancelled()

	available, credited := e.creditRooms(cancelled)

	e.logger.WithFields(log.Fields{
		"reservation_id": cancelled.ID(),
		"hotel_id":       cancelled.HotelID(),
		"rooms":          cancelled.Rooms(),
		"credited":       credited,
	}).Info("reservation cancelled")

	e.publish(domain.ReservationEvent{
		Type:             domain.ReservationEventCancelled,
		ReservationID:    cancelled.ID(),
		HotelID:          cancelled.HotelID(),
		CustomerID:       cancelled.CustomerID(),
		Rooms:            cancelled.Rooms(),
		AvailableRooms:   available,
		InventoryUpdated: credited,
		OccurredAt:       e.now().UTC(),
	})
	return true, nil
}

// creditRooms возвращает комнаты отменённого бронирования, не превышая total.
func (e *Engine) creditRooms(cancelled domain.Reservation) (int, bool) {
	logger := e.logger.WithFields(log.Fields{
		"reservation_id": cancelled.ID(),
		"hotel_id":       cancelled.HotelID(),
	})

	records := e.store.ReadAll(domain.StoreHotels)
	idx := findByID(records, cancelled.HotelID())
	if idx < 0 {
		logger.Warn("hotel of cancelled reservation not found, rooms not credited")
		return 0, false
	}

	rec := records[idx]
	available, okAvailable := domain.IntValue(rec[domain.FieldAvailableRooms])
	total, okTotal := domain.IntValue(rec[domain.FieldTotalRooms])
	if !okAvailable || !okTotal {
		logger.Error("hotel room counters are not integers, rooms not credited")
		e.metrics.RecordCorruptedRecord(string(domain.StoreHotels))
		return 0, false
	}

	credited := available + cancelled.Rooms()
	if credited > total {
		logger.WithFields(log.Fields{
			"available": available,
			"rooms":     cancelled.Rooms(),
			"total":     total,
		}).Warn("room credit exceeds hotel total, clamping")
		e.metrics.RecordAvailabilityClamp()
		credited = total
	}

	rec[domain.FieldAvailableRooms] = credited
	e.write(domain.StoreHotels, records)
	return credited, true
}

// GetReservation возвращает бронирование или ErrNotFound.
func (e *Engine) GetReservation(id int) (domain.Reservation, error) {
	defer e.observe(opGetReservation)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return domain.Reservation{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreReservations)
	idx := findByID(records, id)
	if idx < 0 {
		return domain.Reservation{}, notFound("reservation", id)
	}
	reservation, ok := codec.DecodeReservation(records[idx], e.logger)
	if !ok {
		e.metrics.RecordCorruptedRecord(string(domain.StoreReservations))
		return domain.Reservation{}, corruptedEntity("reservation", id)
	}
	return reservation, nil
}

// ListReservations возвращает все корректные бронирования в порядке хранения.
func (e *Engine) ListReservations() []domain.Reservation {
	defer e.observe(opListReservations)()

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.listReservationsLocked()
}

func (e *Engine) listReservationsLocked() []domain.Reservation {
	records := e.store.ReadAll(domain.StoreReservations)
	reservations := make([]domain.Reservation, 0, len(records))
	for _, rec := range records {
		reservation, ok := codec.DecodeReservation(rec, e.logger)
		if !ok {
			e.metrics.RecordCorruptedRecord(string(domain.StoreReservations))
			continue
		}
		reservations = append(reservations, reservation)
	}
	return reservations
}
