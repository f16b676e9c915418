package product

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrNoVariants          = errors.New("product must have at least one variant")
	ErrInvalidProductName  = errors.New("product name is required")
	ErrInvalidVariantPrice = errors.New("variant price must not be negative")
	ErrInvalidVariantStock = errors.New("variant stock must not be negative")
	ErrVariantOutOfRange   = errors.New("variant index out of range")

	// -- Resource State --
	ErrProductNotFound   = errors.New("product not found")
	ErrNegativeStock     = errors.New("stock would become negative")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// NegativeStockError reports a rejected stock adjustment. The current
// quantity is carried so callers can re-present it instead of clamping.
type NegativeStockError struct {
	ProductID    string
	VariantIndex int
	Current      int
	Delta        int
}

func (e *NegativeStockError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("%s: have %d, delta %d", ErrNegativeStock, e.Current, e.Delta)
	}
	return fmt.Sprintf("%s: product %s variant %d has %d, delta %d",
		ErrNegativeStock, e.ProductID, e.VariantIndex, e.Current, e.Delta)
}

func (e *NegativeStockError) Is(target error) bool {
	return target == ErrNegativeStock
}
