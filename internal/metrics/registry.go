package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Повторная регистрация (например, второй Engine в том же процессе)
// возвращает уже зарегистрированный коллектор.

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[prometheus.Counter](err, opts.Name)
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[*prometheus.CounterVec](err, opts.Name)
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[prometheus.Gauge](err, opts.Name)
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[*prometheus.HistogramVec](err, opts.Name)
	}
	return collector
}

func existingCollector[T any](err error, name string) T {
	alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		panic(fmt.Sprintf("register collector %q: %v", name, err))
	}
	existing, ok := alreadyRegistered.ExistingCollector.(T)
	if !ok {
		panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
	}
	return existing
}
