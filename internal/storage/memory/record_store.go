package memory

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// RecordStore: in-memory реализация domain.RecordStore для тестов и драйвера memory.
// Каждое хранилище лежит сериализованным JSON-документом, поэтому ведёт себя так же,
// как файловое: значения не разделяются с вызывающим, а числа приходят как json.Number.
type RecordStore struct {
	mu         sync.RWMutex
	documents  map[domain.StoreKind][]byte
	writeFails map[domain.StoreKind]error
	logger     *log.Entry
}

// NewRecordStore возвращает пустое in-memory хранилище.
func NewRecordStore(logger *log.Entry) *RecordStore {
	if logger == nil {
		logger = log.New().WithField("component", "memory-store")
	}
	return &RecordStore{
		documents:  make(map[domain.StoreKind][]byte),
		writeFails: make(map[domain.StoreKind]error),
		logger:     logger,
	}
}

func (s *RecordStore) Name() string { return "memory" }

func (s *RecordStore) EnsureExists(kind domain.StoreKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[kind]; !ok {
		s.documents[kind] = []byte("[]\n")
	}
}

func (s *RecordStore) ReadAll(kind domain.StoreKind) []domain.Record {
	s.mu.RLock()
	data, ok := s.documents[kind]
	s.mu.RUnlock()

	if !ok {
		s.EnsureExists(kind)
		return []domain.Record{}
	}
	return codec.ParseList(data, string(kind), s.logger)
}

func (s *RecordStore) WriteAll(kind domain.StoreKind, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFails[kind]; err != nil {
		s.logger.WithError(err).WithField("store", string(kind)).Error("failed to write store")
		return err
	}

	data, err := codec.MarshalList(records)
	if err != nil {
		s.logger.WithError(err).WithField("store", string(kind)).Error("failed to encode store")
		return err
	}
	s.documents[kind] = data
	return nil
}

// SetRaw подменяет содержимое хранилища произвольными байтами.
// Нужен для воспроизведения повреждённых данных.
func (s *RecordStore) SetRaw(kind domain.StoreKind, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[kind] = append([]byte(nil), data...)
}

// Raw возвращает текущее содержимое хранилища.
func (s *RecordStore) Raw(kind domain.StoreKind) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.documents[kind]
	return append([]byte(nil), data...), ok
}

// FailWrites заставляет WriteAll для kind возвращать err; nil снимает сбой.
func (s *RecordStore) FailWrites(kind domain.StoreKind, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.writeFails, kind)
		return
	}
	s.writeFails[kind] = err
}
