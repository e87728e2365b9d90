package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidField: скалярное значение не прошло проверку типа или диапазона.
	ErrInvalidField = errors.New("invalid field")
	// ErrNotFound: идентификатор не указывает на валидную сущность.
	ErrNotFound = errors.New("not found")
	// ErrCorrupted: запись в хранилище есть, но семантически некорректна.
	ErrCorrupted = errors.New("corrupted record")
	// ErrInsufficientAvailability: запрошено больше комнат, чем доступно в отеле.
	ErrInsufficientAvailability = errors.New("insufficient availability")
)

// FieldError описывает конкретное поле, не прошедшее валидацию.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInvalidField).
func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

func invalidField(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// corrupted помечает ошибку разбора сохранённой записи как ErrCorrupted,
// сохраняя исходную причину в цепочке.
func corrupted(entity string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCorrupted, entity, err)
}

// IsAbsent сообщает, что сущность отсутствует или не может быть прочитана.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNotFound)
}
