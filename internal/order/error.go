package order

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrValidation    = errors.New("validation failed")
	ErrEmptyOrder    = errors.New("order has no line items")
	ErrNothingToEdit = errors.New("no editable field supplied")

	// -- Resource State --
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartOwnerMismatch = errors.New("cart belongs to another store")
)

// ValidationError names the offending field. It matches ErrValidation with
// errors.Is; an empty order also matches ErrEmptyOrder.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return target == ErrEmptyOrder && e.Field == "items" && e.Reason == emptyReason
}

const emptyReason = "must contain at least one line item"

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
