package domain

import (
	"encoding/json"
	"time"
)

// ReservationStatus отражает состояние бронирования.
// Переход возможен только active → cancelled, cancelled является конечным состоянием.
type ReservationStatus string

const (
	// ReservationStatusActive: бронирование действует, комнаты списаны с отеля.
	ReservationStatusActive ReservationStatus = "active"
	// ReservationStatusCancelled: бронирование отменено, комнаты возвращены отелю.
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Написания статусов, которые встречаются в ранее сохранённых данных.
var legacyStatuses = map[string]ReservationStatus{
	"activa":    ReservationStatusActive,
	"cancelada": ReservationStatusCancelled,
}

// ParseReservationStatus приводит строку к статусу, принимая и старые написания.
func ParseReservationStatus(raw any) (ReservationStatus, error) {
	text, err := ValidateNonEmptyText(raw, "reservation."+FieldStatus)
	if err != nil {
		return "", err
	}
	switch status := ReservationStatus(text); status {
	case ReservationStatusActive, ReservationStatusCancelled:
		return status, nil
	}
	if status, ok := legacyStatuses[text]; ok {
		return status, nil
	}
	return "", invalidField("reservation."+FieldStatus, "must be one of active, cancelled")
}

// Reservation: проверенное бронирование комнат в отеле на имя клиента.
// Даты хранятся как текст: ни формат, ни порядок дат не проверяются.
type Reservation struct {
	id         int
	hotelID    int
	customerID int
	rooms      int
	startDate  string
	endDate    string
	status     ReservationStatus
}

// ReservationRequest: входные данные для создания бронирования.
type ReservationRequest struct {
	CustomerID int
	HotelID    int
	Rooms      int
	StartDate  string
	EndDate    string
}

// Validate проверяет скалярные поля запроса в том же порядке, что и создание брони.
func (r ReservationRequest) Validate() (ReservationRequest, error) {
	var err error
	out := r
	if out.CustomerID, err = ValidatePositiveInt(r.CustomerID, FieldCustomerID); err != nil {
		return ReservationRequest{}, err
	}
	if out.HotelID, err = ValidatePositiveInt(r.HotelID, FieldHotelID); err != nil {
		return ReservationRequest{}, err
	}
	if out.Rooms, err = ValidatePositiveInt(r.Rooms, FieldRooms); err != nil {
		return ReservationRequest{}, err
	}
	if out.StartDate, err = ValidateNonEmptyText(r.StartDate, FieldStartDate); err != nil {
		return ReservationRequest{}, err
	}
	if out.EndDate, err = ValidateNonEmptyText(r.EndDate, FieldEndDate); err != nil {
		return ReservationRequest{}, err
	}
	return out, nil
}

// NewActiveReservation собирает новое активное бронирование из проверенного запроса.
func NewActiveReservation(id int, req ReservationRequest) (Reservation, error) {
	return reservationFromValues(id, req.HotelID, req.CustomerID, req.Rooms, req.StartDate, req.EndDate, string(ReservationStatusActive))
}

// ReservationFromRecord разбирает сохранённую запись. Любая ошибка оборачивается в ErrCorrupted.
func ReservationFromRecord(rec Record) (Reservation, error) {
	fields := []string{FieldID, FieldHotelID, FieldCustomerID, FieldRooms, FieldStartDate, FieldEndDate, FieldStatus}
	values := make([]any, len(fields))
	for i, field := range fields {
		value, err := requireField(rec, field)
		if err != nil {
			return Reservation{}, corrupted("reservation", err)
		}
		values[i] = value
	}
	reservation, err := reservationFromValues(values[0], values[1], values[2], values[3], values[4], values[5], values[6])
	if err != nil {
		return Reservation{}, corrupted("reservation", err)
	}
	return reservation, nil
}

func reservationFromValues(rawID, rawHotelID, rawCustomerID, rawRooms, rawStart, rawEnd, rawStatus any) (Reservation, error) {
	var (
		r   Reservation
		err error
	)
	if r.id, err = ValidatePositiveInt(rawID, "reservation."+FieldID); err != nil {
		return Reservation{}, err
	}
	if r.hotelID, err = ValidatePositiveInt(rawHotelID, "reservation."+FieldHotelID); err != nil {
		return Reservation{}, err
	}
	if r.customerID, err = ValidatePositiveInt(rawCustomerID, "reservation."+FieldCustomerID); err != nil {
		return Reservation{}, err
	}
	if r.rooms, err = ValidatePositiveInt(rawRooms, "reservation."+FieldRooms); err != nil {
		return Reservation{}, err
	}
	if r.startDate, err = ValidateNonEmptyText(rawStart, "reservation."+FieldStartDate); err != nil {
		return Reservation{}, err
	}
	if r.endDate, err = ValidateNonEmptyText(rawEnd, "reservation."+FieldEndDate); err != nil {
		return Reservation{}, err
	}
	if r.status, err = ParseReservationStatus(rawStatus); err != nil {
		return Reservation{}, err
	}
	return r, nil
}

func (r Reservation) ID() int                   { return r.id }
func (r Reservation) HotelID() int              { return r.hotelID }
func (r Reservation) CustomerID() int           { return r.customerID }
func (r Reservation) Rooms() int                { return r.rooms }
func (r Reservation) StartDate() string         { return r.startDate }
func (r Reservation) EndDate() string           { return r.endDate }
func (r Reservation) Status() ReservationStatus { return r.status }

// IsActive сообщает, что бронирование ещё удерживает комнаты.
func (r Reservation) IsActive() bool {
	return r.status == ReservationStatusActive
}

// Cancel возвращает отменённую копию. false, если бронирование уже было отменено.
func (r Reservation) Cancel() (Reservation, bool) {
	if r.status == ReservationStatusCancelled {
		return r, false
	}
	r.status = ReservationStatusCancelled
	return r, true
}

// ToRecord сериализует бронирование во все поля сохранённой записи.
func (r Reservation) ToRecord() Record {
	return Record{
		FieldID:         r.id,
		FieldHotelID:    r.hotelID,
		FieldCustomerID: r.customerID,
		FieldRooms:      r.rooms,
		FieldStartDate:  r.startDate,
		FieldEndDate:    r.endDate,
		FieldStatus:     string(r.status),
	}
}

// MarshalJSON отдаёт бронирование во внешнем (API) представлении.
func (r Reservation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         int               `json:"id"`
		HotelID    int               `json:"hotel_id"`
		CustomerID int               `json:"customer_id"`
		Rooms      int               `json:"rooms"`
		StartDate  string            `json:"start_date"`
		EndDate    string            `json:"end_date"`
		Status     ReservationStatus `json:"status"`
	}{r.id, r.hotelID, r.customerID, r.rooms, r.startDate, r.endDate, r.status})
}

// ReservationEventType: тип события жизненного цикла бронирования.
type ReservationEventType string

const (
	ReservationEventCreated   ReservationEventType = "reservation.created"
	ReservationEventCancelled ReservationEventType = "reservation.cancelled"
)

// ReservationEvent фиксирует изменение бронирования и остаток комнат отеля после него.
// InventoryUpdated=false означает, что инвентарь отеля не удалось скорректировать
// и AvailableRooms не заполнено.
type ReservationEvent struct {
	Type             ReservationEventType
	ReservationID    int
	HotelID          int
	CustomerID       int
	Rooms            int
	AvailableRooms   int
	InventoryUpdated bool
	OccurredAt       time.Time
}
