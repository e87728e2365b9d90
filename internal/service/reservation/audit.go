package reservation

import (
	log "github.com/sirupsen/logrus"
)

// HotelInventory: сверка инвентаря одного отеля с активными бронированиями.
type HotelInventory struct {
	HotelID           int    `json:"hotel_id"`
	Name              string `json:"name"`
	TotalRooms        int    `json:"total_rooms"`
	AvailableRooms    int    `json:"available_rooms"`
	ReservedRooms     int    `json:"reserved_rooms"`
	ExpectedAvailable int    `json:"expected_available"`
	// Drift > 0: свободных комнат больше ожидаемого, < 0: меньше (например, после
	// падения между списанием комнат и записью бронирования).
	Drift int `json:"drift"`
}

// InventoryReport: результат AuditInventory.
type InventoryReport struct {
	Hotels        []HotelInventory `json:"hotels"`
	DriftedHotels int              `json:"drifted_hotels"`
	// Активные бронирования, чей отель отсутствует или повреждён.
	OrphanReservations []int `json:"orphan_reservations"`
}

// AuditInventory сравнивает available каждого отеля с total минус комнаты
// активных бронирований. Только чтение: расхождения не исправляются.
func (e *Engine) AuditInventory() InventoryReport {
	defer e.observe(opAuditInventory)()

	e.mu.Lock()
	defer e.mu.Unlock()

	hotels := e.listHotelsLocked()
	reserved := make(map[int]int, len(hotels))
	known := make(map[int]bool, len(hotels))
	for _, hotel := range hotels {
		known[hotel.ID()] = true
	}

	report := InventoryReport{
		Hotels:             make([]HotelInventory, 0, len(hotels)),
		OrphanReservations: []int{},
	}
	for _, reservation := range e.listReservationsLocked() {
		if !reservation.IsActive() {
			continue
		}
		if !known[reservation.HotelID()] {
			report.OrphanReservations = append(report.OrphanReservations, reservation.ID())
			continue
		}
		reserved[reservation.HotelID()] += reservation.Rooms()
	}

	for _, hotel := range hotels {
		expected := hotel.TotalRooms() - reserved[hotel.ID()]
		item := HotelInventory{
			HotelID:           hotel.ID(),
			Name:              hotel.Name(),
			TotalRooms:        hotel.TotalRooms(),
			AvailableRooms:    hotel.AvailableRooms(),
			ReservedRooms:     reserved[hotel.ID()],
			ExpectedAvailable: expected,
			Drift:             hotel.AvailableRooms() - expected,
		}
		if item.Drift != 0 {
			report.DriftedHotels++
			e.logger.WithFields(log.Fields{
				"hotel_id":  item.HotelID,
				"available": item.AvailableRooms,
				"expected":  item.ExpectedAvailable,
			}).Warn("hotel inventory drift detected")
		}
		report.Hotels = append(report.Hotels, item)
	}

	e.metrics.SetDriftedHotels(report.DriftedHotels)
	return report
}
