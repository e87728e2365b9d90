package reservation

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// CreateHotel создаёт отель, полностью доступный для бронирования, и возвращает его id.
func (e *Engine) CreateHotel(name, location string, totalRooms int) (int, error) {
	defer e.observe(opCreateHotel)()

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreHotels)
	hotel, err := domain.NewHotel(domain.NextID(records), name, location, totalRooms, totalRooms)
	if err != nil {
		return 0, err
	}

	records = append(records, hotel.ToRecord())
	e.write(domain.StoreHotels, records)

	e.logger.WithFields(log.Fields{
		"hotel_id":    hotel.ID(),
		"total_rooms": hotel.TotalRooms(),
	}).Info("hotel created")
	return hotel.ID(), nil
}

// DeleteHotel удаляет отель. Бронирования, ссылающиеся на него, не затрагиваются.
func (e *Engine) DeleteHotel(id int) (bool, error) {
	defer e.observe(opDeleteHotel)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kept, removed := removeByID(e.store.ReadAll(domain.StoreHotels), id)
	if !removed {
		return false, nil
	}
	e.write(domain.StoreHotels, kept)

	e.logger.WithField("hotel_id", id).Info("hotel deleted")
	return true, nil
}

// GetHotel возвращает отель. Отсутствующий или повреждённый отель даёт ErrNotFound;
// для повреждённого дополнительно выполняется errors.Is(err, ErrCorrupted).
func (e *Engine) GetHotel(id int) (domain.Hotel, error) {
	defer e.observe(opGetHotel)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return domain.Hotel{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.getHotelLocked(id)
}

func (e *Engine) getHotelLocked(id int) (domain.Hotel, error) {
	records := e.store.ReadAll(domain.StoreHotels)
	idx := findByID(records, id)
	if idx < 0 {
		return domain.Hotel{}, notFound("hotel", id)
	}
	hotel, ok := codec.DecodeHotel(records[idx], e.logger)
	if !ok {
		e.metrics.RecordCorruptedRecord(string(domain.StoreHotels))
		return domain.Hotel{}, corruptedEntity("hotel", id)
	}
	return hotel, nil
}

// UpdateHotel меняет имя и/или расположение. Количество комнат не меняется.
// Возвращает true, если хотя бы одно поле действительно изменилось.
func (e *Engine) UpdateHotel(id int, upd domain.HotelUpdate) (bool, error) {
	defer e.observe(opUpdateHotel)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return false, err
	}
	changes, err := hotelChanges(upd)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreHotels)
	if !applyChanges(records, id, changes) {
		return false, nil
	}
	e.write(domain.StoreHotels, records)

	e.logger.WithField("hotel_id", id).Info("hotel updated")
	return true, nil
}

// ListHotels возвращает все корректные отели в порядке хранения.
// Повреждённые записи пропускаются с диагностикой.
func (e *Engine) ListHotels() []domain.Hotel {
	defer e.observe(opListHotels)()

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.listHotelsLocked()
}

func (e *Engine) listHotelsLocked() []domain.Hotel {
	records := e.store.ReadAll(domain.StoreHotels)
	hotels := make([]domain.Hotel, 0, len(records))
	for _, rec := range records {
		hotel, ok := codec.DecodeHotel(rec, e.logger)
		if !ok {
			e.metrics.RecordCorruptedRecord(string(domain.StoreHotels))
			continue
		}
		hotels = append(hotels, hotel)
	}
	return hotels
}

func hotelChanges(upd domain.HotelUpdate) (map[string]string, error) {
	changes := make(map[string]string, 2)
	if upd.Name != nil {
		name, err := domain.ValidateNonEmptyText(*upd.Name, domain.FieldName)
		if err != nil {
			return nil, err
		}
		changes[domain.FieldName] = name
	}
	if upd.Location != nil {
		location, err := domain.ValidateNonEmptyText(*upd.Location, domain.FieldLocation)
		if err != nil {
			return nil, err
		}
		changes[domain.FieldLocation] = location
	}
	return changes, nil
}

// applyChanges записывает изменённые поля во все записи с данным id.
func applyChanges(records []domain.Record, id int, changes map[string]string) bool {
	changed := false
	for _, rec := range records {
		if !rec.HasID(id) {
			continue
		}
		for field, value := range changes {
			if current, ok := rec[field].(string); ok && current == value {
				continue
			}
			rec[field] = value
			changed = true
		}
	}
	return changed
}
