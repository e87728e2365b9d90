package domain

import "encoding/json"

// Hotel: проверенный отель. Получить экземпляр можно только через NewHotel
// или HotelFromRecord, поэтому available <= total выполняется всегда.
type Hotel struct {
	id             int
	name           string
	location       string
	totalRooms     int
	availableRooms int
}

// NewHotel проверяет поля и собирает отель.
func NewHotel(id int, name, location string, totalRooms, availableRooms int) (Hotel, error) {
	return hotelFromValues(id, name, location, totalRooms, availableRooms)
}

// HotelFromRecord разбирает сохранённую запись. Любая ошибка оборачивается в ErrCorrupted.
func HotelFromRecord(rec Record) (Hotel, error) {
	var values [5]any
	for i, field := range []string{FieldID, FieldName, FieldLocation, FieldTotalRooms, FieldAvailableRooms} {
		value, err := requireField(rec, field)
		if err != nil {
			return Hotel{}, corrupted("hotel", err)
		}
		values[i] = value
	}
	hotel, err := hotelFromValues(values[0], values[1], values[2], values[3], values[4])
	if err != nil {
		return Hotel{}, corrupted("hotel", err)
	}
	return hotel, nil
}

func hotelFromValues(rawID, rawName, rawLocation, rawTotal, rawAvailable any) (Hotel, error) {
	id, err := ValidatePositiveInt(rawID, "hotel."+FieldID)
	if err != nil {
		return Hotel{}, err
	}
	name, err := ValidateNonEmptyText(rawName, "hotel."+FieldName)
	if err != nil {
		return Hotel{}, err
	}
	location, err := ValidateNonEmptyText(rawLocation, "hotel."+FieldLocation)
	if err != nil {
		return Hotel{}, err
	}
	total, err := ValidateNonNegativeInt(rawTotal, "hotel."+FieldTotalRooms)
	if err != nil {
		return Hotel{}, err
	}
	available, err := ValidateNonNegativeInt(rawAvailable, "hotel."+FieldAvailableRooms)
	if err != nil {
		return Hotel{}, err
	}
	if available > total {
		return Hotel{}, invalidField("hotel."+FieldAvailableRooms, "must not exceed "+FieldTotalRooms)
	}
	return Hotel{
		id:             id,
		name:           name,
		location:       location,
		totalRooms:     total,
		availableRooms: available,
	}, nil
}

func (h Hotel) ID() int             { return h.id }
func (h Hotel) Name() string        { return h.name }
func (h Hotel) Location() string    { return h.location }
func (h Hotel) TotalRooms() int     { return h.totalRooms }
func (h Hotel) AvailableRooms() int { return h.availableRooms }

// ToRecord сериализует отель во все поля сохранённой записи.
func (h Hotel) ToRecord() Record {
	return Record{
		FieldID:             h.id,
		FieldName:           h.name,
		FieldLocation:       h.location,
		FieldTotalRooms:     h.totalRooms,
		FieldAvailableRooms: h.availableRooms,
	}
}

type hotelJSON struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	TotalRooms     int    `json:"total_rooms"`
	AvailableRooms int    `json:"available_rooms"`
}

// MarshalJSON отдаёт отель во внешнем (API) представлении.
func (h Hotel) MarshalJSON() ([]byte, error) {
	return json.Marshal(hotelJSON{
		ID:             h.id,
		Name:           h.name,
		Location:       h.location,
		TotalRooms:     h.totalRooms,
		AvailableRooms: h.availableRooms,
	})
}

// HotelUpdate: частичное обновление отеля. nil-поля не меняются.
// Количество комнат здесь не меняется: им управляет только поток бронирований.
type HotelUpdate struct {
	Name     *string
	Location *string
}

// Empty сообщает, что обновление ничего не меняет.
func (u HotelUpdate) Empty() bool {
	return u.Name == nil && u.Location == nil
}
