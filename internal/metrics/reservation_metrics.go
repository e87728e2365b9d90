package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа в бронировании для метки reason.
const (
	RejectInvalidField      = "invalid_field"
	RejectCustomerNotFound  = "customer_not_found"
	RejectHotelNotFound     = "hotel_not_found"
	RejectHotelCorrupted    = "hotel_corrupted"
	RejectInsufficientRooms = "insufficient_availability"
)

// ReservationMetrics содержит метрики движка бронирований.
// Методы безопасно вызывать на nil-получателе.
type ReservationMetrics struct {
	// Счётчики жизненного цикла бронирований
	created   prometheus.Counter
	cancelled prometheus.Counter
	rejected  *prometheus.CounterVec

	// Защитные механизмы инвентаря
	clamps        prometheus.Counter
	driftedHotels prometheus.Gauge

	// Состояние хранилищ
	corrupted     *prometheus.CounterVec
	writeFailures *prometheus.CounterVec

	publishFailures prometheus.Counter

	opDuration *prometheus.HistogramVec
}

// NewReservationMetrics регистрирует метрики в глобальном реестре Prometheus.
func NewReservationMetrics() *ReservationMetrics {
	return NewReservationMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewReservationMetricsWithRegisterer регистрирует метрики в заданном реестре.
func NewReservationMetricsWithRegisterer(registerer prometheus.Registerer) *ReservationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ReservationMetrics{
		created: registerCounter(registerer, prometheus.CounterOpts{
			Name: "hotelres_reservations_created_total",
			Help: "Total number of reservations created",
		}),
		cancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "hotelres_reservations_cancelled_total",
			Help: "Total number of reservations cancelled",
		}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "hotelres_reservations_rejected_total",
			Help: "Total number of reservation requests rejected, by reason",
		}, []string{"reason"}),
		clamps: registerCounter(registerer, prometheus.CounterOpts{
			Name: "hotelres_availability_clamps_total",
			Help: "Total number of cancellations whose room credit was clamped to hotel total",
		}),
		driftedHotels: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "hotelres_inventory_drifted_hotels",
			Help: "Number of hotels whose availability disagrees with active reservations at last audit",
		}),
		corrupted: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "hotelres_corrupted_records_total",
			Help: "Total number of stored records skipped because they failed validation",
		}, []string{"store"}),
		writeFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "hotelres_store_write_failures_total",
			Help: "Total number of failed store writes",
		}, []string{"store"}),
		publishFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "hotelres_event_publish_failures_total",
			Help: "Total number of reservation events that could not be published",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "hotelres_engine_operation_duration_seconds",
			Help:    "Duration of reservation engine operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
	}
}

// RecordReservationCreated увеличивает счётчик созданных бронирований.
func (m *ReservationMetrics) RecordReservationCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

// RecordReservationCancelled увеличивает счётчик отменённых бронирований.
func (m *ReservationMetrics) RecordReservationCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

// RecordReservationRejected учитывает отказ в бронировании.
func (m *ReservationMetrics) RecordReservationRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// RecordAvailabilityClamp учитывает срабатывание ограничения available <= total.
func (m *ReservationMetrics) RecordAvailabilityClamp() {
	if m == nil {
		return
	}
	m.clamps.Inc()
}

// SetDriftedHotels фиксирует результат последнего аудита инвентаря.
func (m *ReservationMetrics) SetDriftedHotels(count int) {
	if m == nil {
		return
	}
	m.driftedHotels.Set(float64(count))
}

// RecordCorruptedRecord учитывает пропущенную повреждённую запись.
func (m *ReservationMetrics) RecordCorruptedRecord(store string) {
	if m == nil {
		return
	}
	m.corrupted.WithLabelValues(store).Inc()
}

// RecordStoreWriteFailure учитывает неудачную запись в хранилище.
func (m *ReservationMetrics) RecordStoreWriteFailure(store string) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(store).Inc()
}

// RecordPublishFailure учитывает неотправленное событие.
func (m *ReservationMetrics) RecordPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// RecordOperationDuration записывает время выполнения операции движка.
func (m *ReservationMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
