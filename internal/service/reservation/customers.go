package reservation

import (
	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

// CreateCustomer создаёт клиента и возвращает его id.
func (e *Engine) CreateCustomer(name, email string) (int, error) {
	defer e.observe(opCreateCustomer)()

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreCustomers)
	customer, err := domain.NewCustomer(domain.NextID(records), name, email)
	if err != nil {
		return 0, err
	}

	records = append(records, customer.ToRecord())
	e.write(domain.StoreCustomers, records)

	e.logger.WithField("customer_id", customer.ID()).Info("customer created")
	return customer.ID(), nil
}

// DeleteCustomer удаляет клиента без каскада на бронирования.
func (e *Engine) DeleteCustomer(id int) (bool, error) {
	defer e.observe(opDeleteCustomer)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	kept, removed := removeByID(e.store.ReadAll(domain.StoreCustomers), id)
	if !removed {
		return false, nil
	}
	e.write(domain.StoreCustomers, kept)

	e.logger.WithField("customer_id", id).Info("customer deleted")
	return true, nil
}

// GetCustomer возвращает клиента или ошибку ErrNotFound.
func (e *Engine) GetCustomer(id int) (domain.Customer, error) {
	defer e.observe(opGetCustomer)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return domain.Customer{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.getCustomerLocked(id)
}

func (e *Engine) getCustomerLocked(id int) (domain.Customer, error) {
	records := e.store.ReadAll(domain.StoreCustomers)
	idx := findByID(records, id)
	if idx < 0 {
		return domain.Customer{}, notFound("customer", id)
	}
	customer, ok := codec.DecodeCustomer(records[idx], e.logger)
	if !ok {
		e.metrics.RecordCorruptedRecord(string(domain.StoreCustomers))
		return domain.Customer{}, corruptedEntity("customer", id)
	}
	return customer, nil
}

// UpdateCustomer меняет имя и/или email клиента.
func (e *Engine) UpdateCustomer(id int, upd domain.CustomerUpdate) (bool, error) {
	defer e.observe(opUpdateCustomer)()

	if _, err := validateID(id, domain.FieldID); err != nil {
		return false, err
	}
	changes, err := customerChanges(upd)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreCustomers)
	if !applyChanges(records, id, changes) {
		return false, nil
	}
	e.write(domain.StoreCustomers, records)

	e.logger.WithField("customer_id", id).Info("customer updated")
	return true, nil
}

// ListCustomers возвращает всех корректных клиентов в порядке хранения.
func (e *Engine) ListCustomers() []domain.Customer {
	defer e.observe(opListCustomers)()

	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.store.ReadAll(domain.StoreCustomers)
	customers := make([]domain.Customer, 0, len(records))
	for _, rec := range records {
		customer, ok := codec.DecodeCustomer(rec, e.logger)
		if !ok {
			e.metrics.RecordCorruptedRecord(string(domain.StoreCustomers))
			continue
		}
		customers = append(customers, customer)
	}
	return customers
}

func customerChanges(upd domain.CustomerUpdate) (map[string]string, error) {
	changes := make(map[string]string, 2)
	if upd.Name != nil {
		name, err := domain.ValidateNonEmptyText(*upd.Name, domain.FieldName)
		if err != nil {
			return nil, err
		}
		changes[domain.FieldName] = name
	}
	if upd.Email != nil {
		email, err := domain.ValidateNonEmptyText(*upd.Email, domain.FieldEmail)
		if err != nil {
			return nil, err
		}
		changes[domain.FieldEmail] = email
	}
	return changes, nil
}
