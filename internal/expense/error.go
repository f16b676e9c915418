package expense

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidTitle    = errors.New("expense title is required")
	ErrInvalidAmount   = errors.New("expense amount must be greater than zero")
	ErrInvalidCategory = errors.New("unknown expense category")
	ErrInvalidDate     = errors.New("expense date is required")

	// -- Resource State --
	ErrExpenseNotFound = errors.New("expense not found")
)

// Validate checks a new expense before it is stored.
func Validate(e Expense) error {
	if e.Title == "" {
		return ErrInvalidTitle
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
