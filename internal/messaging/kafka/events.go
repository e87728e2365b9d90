package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// Topics для Kafka
const (
	TopicReservationEvents = "hotelres.reservation.events"
)

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderEventID   = "x-event-id"
)

// ReservationMessage: JSON-представление события бронирования в Kafka.
type ReservationMessage struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	ReservationID    int       `json:"reservation_id"`
	HotelID          int       `json:"hotel_id"`
	CustomerID       int       `json:"customer_id"`
	Rooms            int       `json:"rooms"`
	AvailableRooms   *int      `json:"available_rooms,omitempty"`
	InventoryUpdated bool      `json:"inventory_updated"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NewReservationMessage создает сообщение с новым event_id.
// available_rooms опускается, если инвентарь отеля не обновлялся.
func NewReservationMessage(event domain.ReservationEvent) *ReservationMessage {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	msg := &ReservationMessage{
		EventID:          uuid.NewString(),
		EventType:        string(event.Type),
		ReservationID:    event.ReservationID,
		HotelID:          event.HotelID,
		CustomerID:       event.CustomerID,
		Rooms:            event.Rooms,
		InventoryUpdated: event.InventoryUpdated,
		OccurredAt:       occurredAt,
	}
	if event.InventoryUpdated {
		available := event.AvailableRooms
		msg.AvailableRooms = &available
	}
	return msg
}
