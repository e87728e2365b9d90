// Package dispatch доставляет события бронирований получателю (Kafka) в фоне:
// движок не ждёт брокер, пока держит блокировку хранилища.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/metrics"
)

const (
	defaultQueueSize      = 1024
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	defaultMaxRetryDelay  = 5 * time.Second
)

var (
	// ErrQueueFull: очередь заполнена, событие отброшено.
	ErrQueueFull = errors.New("event queue is full")
	// ErrStopped: диспетчер остановлен и новых событий не принимает.
	ErrStopped = errors.New("event dispatcher is stopped")
)

// Options задаёт параметры Dispatcher.
type Options struct {
	Logger         *log.Entry
	Metrics        *metrics.DispatchMetrics
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	MaxRetryDelay  time.Duration
}

// Option настраивает Dispatcher.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) { opts.Logger = logger }
}

// WithMetrics задаёт метрики доставки.
func WithMetrics(m *metrics.DispatchMetrics) Option {
	return func(opts *Options) { opts.Metrics = m }
}

// WithQueueSize задаёт ёмкость очереди.
func WithQueueSize(size int) Option {
	return func(opts *Options) { opts.QueueSize = size }
}

// WithMaxAttempts задаёт число попыток доставки одного события.
func WithMaxAttempts(attempts int) Option {
	return func(opts *Options) { opts.MaxAttempts = attempts }
}

// WithRetryBaseDelay задаёт базовую задержку экспоненциального backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *Options) { opts.RetryBaseDelay = delay }
}

// Dispatcher реализует domain.ReservationEventPublisher поверх очереди.
// PublishReservationEvent не блокируется; доставку выполняет Run.
type Dispatcher struct {
	sink    domain.ReservationEventPublisher
	queue   chan domain.ReservationEvent
	logger  *log.Entry
	metrics *metrics.DispatchMetrics

	maxAttempts    int
	retryBaseDelay time.Duration
	maxRetryDelay  time.Duration

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// New создаёт диспетчер, доставляющий события в sink.
func New(sink domain.ReservationEventPublisher, options ...Option) *Dispatcher {
	opts := Options{
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		MaxRetryDelay:  defaultMaxRetryDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "event-dispatcher")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}
	if opts.MaxRetryDelay <= 0 {
		opts.MaxRetryDelay = defaultMaxRetryDelay
	}

	return &Dispatcher{
		sink:           sink,
		queue:          make(chan domain.ReservationEvent, opts.QueueSize),
		logger:         logger,
		metrics:        opts.Metrics,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		maxRetryDelay:  opts.MaxRetryDelay,
		done:           make(chan struct{}),
	}
}

// PublishReservationEvent ставит событие в очередь.
func (d *Dispatcher) PublishReservationEvent(event domain.ReservationEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}
	select {
	case d.queue <- event:
		d.metrics.SetQueueDepth(len(d.queue))
		return nil
	default:
		d.metrics.RecordAttempt(metrics.DispatchDropped)
		return ErrQueueFull
	}
}

// Run доставляет события до отмены ctx. После отмены новые события
// не принимаются, а оставшиеся в очереди отправляются по одной попытке.
// Run нужно вызывать один раз.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	if d.sink == nil {
		d.logger.Warn("event dispatcher is disabled: sink is nil")
		d.stop()
		return
	}

	for {
		select {
		case <-ctx.Done():
			d.stop()
			d.drain()
			return
		case event := <-d.queue:
			d.metrics.SetQueueDepth(len(d.queue))
			d.deliver(ctx, event)
		}
	}
}

// Done закрывается, когда Run завершился.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			if err := d.sink.PublishReservationEvent(event); err != nil {
				d.metrics.RecordAttempt(metrics.DispatchFailed)
				d.eventLogger(event).WithError(err).Error("reservation event lost during shutdown")
				continue
			}
			d.metrics.RecordAttempt(metrics.DispatchSent)
		default:
			d.metrics.SetQueueDepth(0)
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event domain.ReservationEvent) {
	if err := d.publishWithRetry(ctx, event); err != nil {
		d.metrics.RecordAttempt(metrics.DispatchFailed)
		d.eventLogger(event).WithError(err).Error("reservation event publish failed after retries")
	}
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, event domain.ReservationEvent) error {
	var lastErr error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.sink.PublishReservationEvent(event)
		if err == nil {
			d.metrics.RecordAttempt(metrics.DispatchSent)
			if attempt > 1 {
				d.eventLogger(event).WithField("attempt", attempt).Info("reservation event published after retry")
			}
			return nil
		}
		lastErr = err
		d.metrics.RecordAttempt(metrics.DispatchRetryError)

		if attempt >= d.maxAttempts {
			break
		}

		delay := d.retryBackoff(attempt)
		d.eventLogger(event).WithError(err).WithFields(log.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("reservation event publish failed, retrying")
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("publish interrupted: %w", errors.Join(lastErr, ctx.Err()))
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", d.maxAttempts, lastErr)
}

// retryBackoff удваивает задержку с каждой попыткой, не превышая maxRetryDelay.
func (d *Dispatcher) retryBackoff(attempt int) time.Duration {
	if d.retryBaseDelay <= 0 {
		return 0
	}
	delay := d.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay >= d.maxRetryDelay/2 {
			return d.maxRetryDelay
		}
		delay *= 2
	}
	if delay > d.maxRetryDelay {
		return d.maxRetryDelay
	}
	return delay
}

func (d *Dispatcher) eventLogger(event domain.ReservationEvent) *log.Entry {
	return d.logger.WithFields(log.Fields{
		"event_type":     string(event.Type),
		"reservation_id": event.ReservationID,
	})
}

var _ domain.ReservationEventPublisher = (*Dispatcher)(nil)
