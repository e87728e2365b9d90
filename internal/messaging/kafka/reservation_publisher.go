package kafka

import (
	"errors"
	"strconv"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// ReservationPublisher публикует события бронирований в заданный topic.
// Ключ сообщения равен id бронирования, поэтому события одного бронирования
// попадают в одну партицию по порядку.
type ReservationPublisher struct {
	producer *Producer
	topic    string
}

// NewReservationPublisher создаёт паблишер; пустой topic заменяется TopicReservationEvents.
func NewReservationPublisher(producer *Producer, topic string) *ReservationPublisher {
	if topic == "" {
		topic = TopicReservationEvents
	}
	return &ReservationPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Topic возвращает topic публикации.
func (p *ReservationPublisher) Topic() string { return p.topic }

func (p *ReservationPublisher) PublishReservationEvent(event domain.ReservationEvent) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka reservation publisher is not initialized")
	}

	msg := NewReservationMessage(event)
	headers := map[string]string{
		HeaderEventType: msg.EventType,
		HeaderEventID:   msg.EventID,
	}
	return p.producer.PublishEvent(p.topic, strconv.Itoa(event.ReservationID), msg, headers)
}

var _ domain.ReservationEventPublisher = (*ReservationPublisher)(nil)
