package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorWrapped(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		unavailable bool
		invalid     bool
	}{
		{"nil", nil, false, false, false},
		{"plain", errors.New("boom"), false, false, false},
		{"place not found", ErrPlaceNotFound, true, false, false},
		{"wrapped not found", fmt.Errorf("place 42: %w", ErrPlaceNotFound), true, false, false},
		{"double wrapped", fmt.Errorf("recall: %w", fmt.Errorf("place 42: %w", ErrPlaceNotFound)), true, false, false},
		{"model unavailable", fmt.Errorf("predict: %w", ErrModelUnavailable), false, true, false},
		{"invalid input", fmt.Errorf("filter: %w", ErrInvalidInput), false, false, true},
		{"store not found", ErrStoreNotFound, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsUnavailable(tt.err); got != tt.unavailable {
				t.Errorf("IsUnavailable = %v, want %v", got, tt.unavailable)
			}
			if got := IsInvalidInput(tt.err); got != tt.invalid {
				t.Errorf("IsInvalidInput = %v, want %v", got, tt.invalid)
			}
		})
	}
}

func TestIsStoreNotFoundModuleScoped(t *testing.T) {
	if IsStoreNotFound(ErrPlaceNotFound) {
		t.Error("catalog NOT_FOUND must not be reported as store NOT_FOUND")
	}
	if !IsStoreNotFound(fmt.Errorf("get: %w", ErrStoreNotFound)) {
		t.Error("wrapped ErrStoreNotFound should be store NOT_FOUND")
	}
}
