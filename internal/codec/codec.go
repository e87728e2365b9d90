// Package codec разбирает сохранённые JSON-списки записей и превращает записи
// в проверенные сущности. Повреждённые данные не останавливают работу:
// проблема пишется в лог, а результат считается отсутствующим.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// Unmarshal разбирает произвольный JSON, сохраняя числа как json.Number,
// чтобы целые отличались от дробных.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	// После значения допускаются только пробельные символы.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return value, nil
}

// DecodeList превращает разобранное JSON-значение в список записей.
// Если верхний уровень не список, возвращается пустой результат.
// Элементы, не являющиеся объектами, пропускаются с диагностикой.
func DecodeList(value any, source string, logger *log.Entry) []domain.Record {
	logger = ensureLogger(logger)

	items, ok := value.([]any)
	if !ok {
		logger.WithFields(log.Fields{
			"source": source,
			"type":   fmt.Sprintf("%T", value),
		}).Warn("store content is not a list, treating as empty")
		return []domain.Record{}
	}

	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			logger.WithFields(log.Fields{
				"source": source,
				"index":  i + 1,
				"type":   fmt.Sprintf("%T", item),
			}).Warn("skipping store element that is not an object")
			continue
		}
		records = append(records, domain.Record(obj))
	}
	return records
}

// ParseList разбирает содержимое хранилища. Синтаксически неверный JSON
// даёт пустой список и диагностику.
func ParseList(data []byte, source string, logger *log.Entry) []domain.Record {
	logger = ensureLogger(logger)

	value, err := Unmarshal(data)
	if err != nil {
		logger.WithError(err).WithField("source", source).Error("invalid JSON in store, treating as empty")
		return []domain.Record{}
	}
	return DecodeList(value, source, logger)
}

// MarshalList сериализует список записей с отступом в два пробела.
// HTML-символы и не-ASCII текст не экранируются.
func MarshalList(records []domain.Record) ([]byte, error) {
	if records == nil {
		records = []domain.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeHotel разбирает запись отеля. false означает "отсутствует": причина уже в логе.
func DecodeHotel(rec domain.Record, logger *log.Entry) (domain.Hotel, bool) {
	hotel, err := domain.HotelFromRecord(rec)
	if err != nil {
		logDecodeFailure(logger, domain.StoreHotels, rec, err)
		return domain.Hotel{}, false
	}
	return hotel, true
}

// DecodeCustomer разбирает запись клиента.
func DecodeCustomer(rec domain.Record, logger *log.Entry) (domain.Customer, bool) {
	customer, err := domain.CustomerFromRecord(rec)
	if err != nil {
		logDecodeFailure(logger, domain.StoreCustomers, rec, err)
		return domain.Customer{}, false
	}
	return customer, true
}

// DecodeReservation разбирает запись бронирования.
func DecodeReservation(rec domain.Record, logger *log.Entry) (domain.Reservation, bool) {
	reservation, err := domain.ReservationFromRecord(rec)
	if err != nil {
		logDecodeFailure(logger, domain.StoreReservations, rec, err)
		return domain.Reservation{}, false
	}
	return reservation, true
}

func logDecodeFailure(logger *log.Entry, kind domain.StoreKind, rec domain.Record, err error) {
	entry := ensureLogger(logger).WithError(err).WithField("store", string(kind))
	if id, ok := rec[domain.FieldID]; ok {
		entry = entry.WithField("record_id", id)
	}
	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		entry = entry.WithField("field", fieldErr.Field)
	}
	entry.Warn("corrupted record")
}

func ensureLogger(logger *log.Entry) *log.Entry {
	if logger == nil {
		return log.New().WithField("component", "codec")
	}
	return logger
}
