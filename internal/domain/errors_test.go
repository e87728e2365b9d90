package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestFieldError_UnwrapsToInvalidField(t *testing.T) {
	err := invalidField("nombre", "must be a non-empty string")

	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	if fieldErr.Field != "nombre" {
		t.Errorf("expected field nombre, got %s", fieldErr.Field)
	}
	if err.Error() != "nombre must be a non-empty string" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found", err: ErrNotFound, want: true},
		{name: "corrupted and absent", err: fmt.Errorf("%w: %w", ErrNotFound, ErrCorrupted), want: true},
		{name: "wrapped not found", err: fmt.Errorf("hotel 7: %w", ErrNotFound), want: true},
		{name: "corrupted only", err: ErrCorrupted, want: false},
		{name: "insufficient availability", err: ErrInsufficientAvailability, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAbsent(tt.err); got != tt.want {
				t.Errorf("IsAbsent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrupted_KeepsCause(t *testing.T) {
	err := corrupted("hotel", invalidField("hotel.id", "is required"))

	if !errors.Is(err, ErrCorrupted) {
		t.Fatal("expected ErrCorrupted in chain")
	}
	if !errors.Is(err, ErrInvalidField) {
		t.Fatal("expected ErrInvalidField in chain")
	}
}
