package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing recipes, users and relation rows.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a non-author attempts a mutation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned for duplicate favorite/cart/subscription pairs.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries a field-level message for 400 responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
