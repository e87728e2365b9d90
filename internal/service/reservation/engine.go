// Package reservation содержит движок бронирований: операции над отелями,
// клиентами и бронированиями, которые поддерживают инвариант инвентаря
// 0 <= available <= total поверх хранилища записей.
package reservation

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/metrics"
)

// Имена операций для метрик длительности.
const (
	opCreateHotel       = "create_hotel"
	opDeleteHotel       = "delete_hotel"
	opGetHotel          = "get_hotel"
	opUpdateHotel       = "update_hotel"
	opListHotels        = "list_hotels"
	opCreateCustomer    = "create_customer"
	opDeleteCustomer    = "delete_customer"
	opGetCustomer       = "get_customer"
	opUpdateCustomer    = "update_customer"
	opListCustomers     = "list_customers"
	opCreateReservation = "create_reservation"
	opCancelReservation = "cancel_reservation"
	opGetReservation    = "get_reservation"
	opListReservations  = "list_reservations"
	opAuditInventory    = "audit_inventory"
)

// Engine: единственный писатель хранилищ. Каждая публичная операция выполняется
// под общим мьютексом как отдельный цикл чтение-изменение-запись.
//
// Между списанием комнат и записью бронирования есть окно: если процесс упадёт
// между двумя записями, отель покажет меньше свободных комнат без бронирования.
// AuditInventory показывает такие расхождения, но не исправляет их.
type Engine struct {
	mu        sync.Mutex
	store     domain.RecordStore
	publisher domain.ReservationEventPublisher
	logger    *log.Entry
	metrics   *metrics.ReservationMetrics
	now       func() time.Time
}

// NewEngine создаёт движок с метриками в глобальном реестре Prometheus.
// publisher может быть nil: тогда события не публикуются.
func NewEngine(store domain.RecordStore, publisher domain.ReservationEventPublisher, logger *log.Entry) *Engine {
	return NewEngineWithMetrics(store, publisher, metrics.NewReservationMetrics(), logger)
}

// NewEngineWithMetrics создаёт движок с заданным набором метрик.
func NewEngineWithMetrics(
	store domain.RecordStore,
	publisher domain.ReservationEventPublisher,
	m *metrics.ReservationMetrics,
	logger *log.Entry,
) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "reservation-engine")
	}
	return &Engine{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов и CLI).
func NewEngineWithoutMetrics(store domain.RecordStore, publisher domain.ReservationEventPublisher, logger *log.Entry) *Engine {
	return NewEngineWithMetrics(store, publisher, nil, logger)
}

// EnsureStores создаёт пустые хранилища всех видов, если их ещё нет.
func (e *Engine) EnsureStores() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, kind := range domain.StoreKinds() {
		e.store.EnsureExists(kind)
	}
}

// StoreName возвращает имя драйвера хранилища.
func (e *Engine) StoreName() string {
	return e.store.Name()
}

func (e *Engine) observe(operation string) func() {
	start := time.Now()
	return func() {
		e.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

// write сохраняет записи. Сбой только логируется и учитывается в метриках.
func (e *Engine) write(kind domain.StoreKind, records []domain.Record) bool {
	if err := e.store.WriteAll(kind, records); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"store":  string(kind),
			"driver": e.store.Name(),
		}).Error("store write failed, changes may be lost")
		e.metrics.RecordStoreWriteFailure(string(kind))
		return false
	}
	return true
}

func (e *Engine) publish(event domain.ReservationEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishReservationEvent(event); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"event_type":     string(event.Type),
			"reservation_id": event.ReservationID,
		}).Warn("failed to publish reservation event")
		e.metrics.RecordPublishFailure()
	}
}

func findByID(records []domain.Record, id int) int {
	for i, rec := range records {
		if rec.HasID(id) {
			return i
		}
	}
	return -1
}

// removeByID удаляет все записи с данным id, сохраняя порядок остальных.
func removeByID(records []domain.Record, id int) ([]domain.Record, bool) {
	kept := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if !rec.HasID(id) {
			kept = append(kept, rec)
		}
	}
	return kept, len(kept) != len(records)
}

func notFound(entity string, id int) error {
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
}

// corruptedEntity сообщает о записи, которая есть, но не проходит проверку:
// для вызывающего она одновременно отсутствует и повреждена.
func corruptedEntity(entity string, id int) error {
	return fmt.Errorf("%s %d: %w: %w", entity, id, domain.ErrNotFound, domain.ErrCorrupted)
}

func validateID(id int, field string) (int, error) {
	return domain.ValidatePositiveInt(id, field)
}
