package domain

// Record: одна запись хранилища до валидации: поля JSON-объекта по имени.
type Record map[string]any

// StoreKind определяет хранилище одного вида сущностей.
type StoreKind string

const (
	StoreHotels       StoreKind = "hotels"
	StoreCustomers    StoreKind = "customers"
	StoreReservations StoreKind = "reservations"
)

// StoreKinds перечисляет все хранилища системы.
func StoreKinds() []StoreKind {
	return []StoreKind{StoreHotels, StoreCustomers, StoreReservations}
}

// FileName возвращает имя файла хранилища, например "hotels.json".
func (k StoreKind) FileName() string {
	return string(k) + ".json"
}

// Имена полей в сохранённых JSON-документах. Совпадают с уже существующими
// данными, поэтому не переименовываются.
const (
	FieldID             = "id"
	FieldName           = "nombre"
	FieldLocation       = "ubicacion"
	FieldTotalRooms     = "habitaciones_total"
	FieldAvailableRooms = "habitaciones_disponibles"
	FieldEmail          = "email"
	FieldHotelID        = "hotel_id"
	FieldCustomerID     = "customer_id"
	FieldRooms          = "habitaciones"
	FieldStartDate      = "fecha_inicio"
	FieldEndDate        = "fecha_fin"
	FieldStatus         = "estatus"
)

// Clone возвращает поверхностную копию записи.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// HasID сообщает, что поле id записи является целым, равным id.
func (r Record) HasID(id int) bool {
	value, ok := IntValue(r[FieldID])
	return ok && value == id
}

// NextID возвращает max(id)+1 по целочисленным id, либо 1 для пустого набора.
// Нецелые id игнорируются.
func NextID(records []Record) int {
	maxID := 0
	for _, rec := range records {
		if id, ok := IntValue(rec[FieldID]); ok && id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// CloneRecords копирует срез записей вместе с самими записями.
func CloneRecords(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	return out
}

func requireField(rec Record, field string) (any, error) {
	value, ok := rec[field]
	if !ok {
		return nil, invalidField(field, "is required")
	}
	return value, nil
}
