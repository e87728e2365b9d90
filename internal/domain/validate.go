package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValidateNonEmptyText требует строку, непустую после обрезки пробелов,
// и возвращает обрезанное значение.
func ValidateNonEmptyText(value any, field string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", invalidField(field, "must be a non-empty string")
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", invalidField(field, "must be a non-empty string")
	}
	return trimmed, nil
}

// ValidateNonNegativeInt требует целое число >= 0. Булевы значения целыми не считаются.
func ValidateNonNegativeInt(value any, field string) (int, error) {
	if _, isBool := value.(bool); isBool {
		return 0, invalidField(field, "must be an integer, got boolean")
	}
	n, ok := IntValue(value)
	if !ok || n < 0 {
		return 0, invalidField(field, "must be an integer >= 0")
	}
	return n, nil
}

// ValidatePositiveInt требует целое число > 0.
func ValidatePositiveInt(value any, field string) (int, error) {
	n, err := ValidateNonNegativeInt(value, field)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, invalidField(field, "must be an integer > 0")
	}
	return n, nil
}

// IntValue извлекает целое из значения, пришедшего из JSON или из кода.
// Дробные числа ("3.0", "1e2") и bool целыми не считаются.
func IntValue(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case json.Number:
		parsed, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}
