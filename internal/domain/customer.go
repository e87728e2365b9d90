package domain

import "encoding/json"

// Customer: проверенный клиент. Формат email не проверяется.
type Customer struct {
	id    int
	name  string
	email string
}

// NewCustomer проверяет поля и собирает клиента.
func NewCustomer(id int, name, email string) (Customer, error) {
	return customerFromValues(id, name, email)
}

// CustomerFromRecord разбирает сохранённую запись. Любая ошибка оборачивается в ErrCorrupted.
func CustomerFromRecord(rec Record) (Customer, error) {
	var values [3]any
	for i, field := range []string{FieldID, FieldName, FieldEmail} {
		value, err := requireField(rec, field)
		if err != nil {
			return Customer{}, corrupted("customer", err)
		}
		values[i] = value
	}
	customer, err := customerFromValues(values[0], values[1], values[2])
	if err != nil {
		return Customer{}, corrupted("customer", err)
	}
	return customer, nil
}

func customerFromValues(rawID, rawName, rawEmail any) (Customer, error) {
	id, err := ValidatePositiveInt(rawID, "customer."+FieldID)
	if err != nil {
		return Customer{}, err
	}
	name, err := ValidateNonEmptyText(rawName, "customer."+FieldName)
	if err != nil {
		return Customer{}, err
	}
	email, err := ValidateNonEmptyText(rawEmail, "customer."+FieldEmail)
	if err != nil {
		return Customer{}, err
	}
	return Customer{id: id, name: name, email: email}, nil
}

func (c Customer) ID() int       { return c.id }
func (c Customer) Name() string  { return c.name }
func (c Customer) Email() string { return c.email }

// ToRecord сериализует клиента во все поля сохранённой записи.
func (c Customer) ToRecord() Record {
	return Record{
		FieldID:    c.id,
		FieldName:  c.name,
		FieldEmail: c.email,
	}
}

// MarshalJSON отдаёт клиента во внешнем (API) представлении.
func (c Customer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}{c.id, c.name, c.email})
}

// CustomerUpdate: частичное обновление клиента. nil-поля не меняются.
type CustomerUpdate struct {
	Name  *string
	Email *string
}

// Empty сообщает, что обновление ничего не меняет.
func (u CustomerUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil
}
