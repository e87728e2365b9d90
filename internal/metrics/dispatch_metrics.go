package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты доставки события для метки result.
const (
	DispatchSent       = "sent"
	DispatchRetryError = "retry_error"
	DispatchFailed     = "failed"
	DispatchDropped    = "dropped"
)

// DispatchMetrics: метрики асинхронной доставки событий бронирований.
type DispatchMetrics struct {
	attempts   *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

// NewDispatchMetrics регистрирует метрики в глобальном реестре.
func NewDispatchMetrics() *DispatchMetrics {
	return NewDispatchMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewDispatchMetricsWithRegisterer регистрирует метрики в заданном реестре.
func NewDispatchMetricsWithRegisterer(registerer prometheus.Registerer) *DispatchMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &DispatchMetrics{
		attempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "hotelres_event_dispatch_attempts_total",
			Help: "Total number of reservation event delivery attempts grouped by result",
		}, []string{"result"}),
		queueDepth: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "hotelres_event_dispatch_queue_depth",
			Help: "Number of reservation events waiting for delivery",
		}),
	}
}

// RecordAttempt учитывает попытку доставки с результатом result.
func (m *DispatchMetrics) RecordAttempt(result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(result).Inc()
}

// SetQueueDepth фиксирует текущую длину очереди.
func (m *DispatchMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}
