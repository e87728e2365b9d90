package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/hotelres/internal/health"
	"github.com/vladislavdragonenkov/hotelres/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/hotelres/internal/metrics"
	"github.com/vladislavdragonenkov/hotelres/internal/service/dispatch"
	"github.com/vladislavdragonenkov/hotelres/internal/service/reservation"
)

// runtimeDependencies содержит всё, что нужно сервису и CLI для работы с движком.
type runtimeDependencies struct {
	store    domain.RecordStore
	engine   *reservation.Engine
	producer *kafka.Producer
	// dispatcher != nil только в режиме сервиса с Kafka; его Run запускает app.Run.
	dispatcher     *dispatch.Dispatcher
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies открывает хранилище, подключает Kafka (если задана)
// и собирает движок. В режиме сервиса (service=true) регистрируются метрики,
// а события уходят в Kafka через фоновый dispatch.Dispatcher.
// CLI публикует синхронно и без реестра Prometheus.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry, service bool) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store, closeStore, err := openRecordStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Недоступная Kafka не мешает работе: события просто не публикуются.
	events, _ := initEventPublishing(cfg, logger, service)

	engineLogger := logger.WithField("component", "reservation-engine")
	var engine *reservation.Engine
	if service {
		engine = reservation.NewEngineWithMetrics(store, events.publisher, metrics.NewReservationMetrics(), engineLogger)
	} else {
		engine = reservation.NewEngineWithoutMetrics(store, events.publisher, engineLogger)
	}
	engine.EnsureStores()

	logger.WithFields(log.Fields{
		"driver": store.Name(),
		"kafka":  events.producer != nil,
	}).Info("runtime dependencies initialized")

	return &runtimeDependencies{
		store:          store,
		engine:         engine,
		producer:       events.producer,
		dispatcher:     events.dispatcher,
		storageChecker: healthcheck.NewStoreChecker(store),
		closeFn: func() error {
			events.close(logger)
			return closeStore()
		},
	}, nil
}

// OpenEngine открывает движок без метрик и HTTP-серверов (для CLI).
// Возвращённую функцию нужно вызвать по завершении работы.
func OpenEngine(ctx context.Context, cfg Config, logger *log.Entry) (*reservation.Engine, func() error, error) {
	deps, err := initRuntimeDependencies(ctx, cfg, logger, false)
	if err != nil {
		return nil, nil, err
	}
	return deps.engine, deps.closeFn, nil
}
