package product

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"shopdesk-be/internal/money"
)

// Classify reports the stock level of v. Zero is always OutOfStock; anything
// below threshold is LowStock.
func Classify(v Variant, threshold int) StockLevel {
	switch {
	case v.StockQuantity <= 0:
		return OutOfStock
	case v.StockQuantity < threshold:
		return LowStock
	default:
		return InStock
	}
}

// Value is sellingPrice × stockQuantity.
func (v Variant) Value() decimal.Decimal {
	return money.Line(v.SellingPrice, v.StockQuantity)
}

// CostValue is stockPrice × stockQuantity.
func (v Variant) CostValue() decimal.Decimal {
	return money.Line(v.StockPrice, v.StockQuantity)
}

func (v Variant) IsOutOfStock() bool {
	return v.StockQuantity == 0
}

// Label joins the non-empty discriminators, e.g. "Shirt / Red / M".
func (v Variant) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{v.Type, v.Color, v.Size} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}

func (v Variant) clone() Variant {
	v.Images = slices.Clone(v.Images)
	return v
}

// AdjustStock returns a copy of v with delta applied to its quantity.
// A result below zero is rejected with *NegativeStockError.
func AdjustStock(v Variant, delta int) (Variant, error) {
	next := v.StockQuantity + delta
	if next < 0 {
		return v, &NegativeStockError{Current: v.StockQuantity, Delta: delta}
	}

	out := v.clone()
	out.StockQuantity = next
	return out, nil
}
