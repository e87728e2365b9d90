// Package health отдаёт /healthz, /readyz и /livez для сервиса бронирований.
package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// severity упорядочивает статусы: общий статус равен худшему из проверок.
func (s Status) severity() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Check представляет проверку здоровья компонента
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response представляет ответ health check
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker интерфейс для проверки здоровья компонента
type Checker interface {
	Check() Check
}

// Handler обрабатывает health check запросы
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
}

// NewHandler создаёт новый health handler
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterChecker регистрирует проверку под именем name. Повторная регистрация заменяет проверку.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// evaluate выполняет все проверки в порядке имён и возвращает их вместе с общим статусом.
func (h *Handler) evaluate() (map[string]Check, Status) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	checkers := make(map[string]Checker, len(h.checkers))
	for name, checker := range h.checkers {
		names = append(names, name)
		checkers[name] = checker
	}
	h.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]Check, len(names))
	overall := StatusHealthy
	for _, name := range names {
		check := checkers[name].Check()
		checks[name] = check
		if check.Status.severity() > overall.severity() {
			overall = check.Status
		}
	}
	return checks, overall
}

// ServeHTTP отдаёт JSON со всеми проверками. 503 только при unhealthy:
// degraded-сервис продолжает принимать трафик.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks, overall := h.evaluate()

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// LivenessHandler простой liveness probe (всегда возвращает 200)
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler проверяет готовность к обработке запросов
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if _, overall := h.evaluate(); overall == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SimpleChecker простая проверка с функцией
type SimpleChecker struct {
	name    string
	checkFn func() error
	// failStatus: статус при ошибке checkFn.
	failStatus Status
}

// NewSimpleChecker создаёт проверку, которая при ошибке сообщает unhealthy.
func NewSimpleChecker(name string, checkFn func() error) *SimpleChecker {
	return &SimpleChecker{name: name, checkFn: checkFn, failStatus: StatusUnhealthy}
}

// Degraded переводит сбой проверки в degraded: компонент не критичен для приёма запросов.
func (c *SimpleChecker) Degraded() *SimpleChecker {
	c.failStatus = StatusDegraded
	return c
}

// Check выполняет проверку
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.checkFn()
	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = c.failStatus
		check.Message = err.Error()
	}
	return check
}

// StoreProbe реализуют хранилища, которые умеют проверить свой бэкенд
// (каталог данных, соединение с БД, бакет).
type StoreProbe interface {
	Check() error
}

// NewStoreChecker создаёт проверку хранилища записей с именем "store:<driver>".
// Хранилище без StoreProbe считается здоровым. Сбой проверки даёт degraded:
// движок продолжает работать и без хранилища, отдавая пустые списки.
func NewStoreChecker(store domain.RecordStore) Checker {
	name := "store:" + store.Name()
	probe, ok := store.(StoreProbe)
	if !ok {
		return staticCheck{Name: name, Status: StatusHealthy, Message: "no probe"}
	}
	return NewSimpleChecker(name, probe.Check).Degraded()
}

type staticCheck Check

func (c staticCheck) Check() Check { return Check(c) }
