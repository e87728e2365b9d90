package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/hotelres/internal/metrics"
	"github.com/vladislavdragonenkov/hotelres/internal/service/dispatch"
)

// eventPublishing: собранная цепочка публикации событий бронирований.
// Нулевое значение означает, что события не публикуются.
type eventPublishing struct {
	producer   *kafka.Producer
	publisher  domain.ReservationEventPublisher
	dispatcher *dispatch.Dispatcher
}

// initEventPublishing подключает Kafka, если заданы брокеры.
// В режиме сервиса паблишер оборачивается в dispatch.Dispatcher,
// чтобы отправка не выполнялась под мьютексом движка.
// Ошибка подключения не фатальна: возвращается пустая цепочка и ошибка для лога.
func initEventPublishing(cfg Config, logger *log.Entry, service bool) (eventPublishing, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return eventPublishing{}, nil
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).WithField("brokers", brokers).Warn("kafka unavailable, reservation events are not published")
		return eventPublishing{}, err
	}

	reservations := kafka.NewReservationPublisher(producer, cfg.KafkaTopic)
	chain := eventPublishing{producer: producer, publisher: reservations}
	if service {
		chain.dispatcher = dispatch.New(reservations,
			dispatch.WithLogger(logger.WithField("component", "event-dispatcher")),
			dispatch.WithMetrics(metrics.NewDispatchMetrics()),
		)
		chain.publisher = chain.dispatcher
	}

	logger.WithFields(log.Fields{
		"brokers": brokers,
		"topic":   reservations.Topic(),
		"async":   service,
	}).Info("kafka publishing enabled")
	return chain, nil
}

// close закрывает producer. Dispatcher к этому моменту уже должен быть остановлен.
func (e eventPublishing) close(logger *log.Entry) {
	if e.producer == nil {
		return
	}
	if err := e.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Debug("kafka producer closed")
}
