package product

import (
	"iter"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// TotalStock sums stockQuantity across all variants.
func (p Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.StockQuantity
	}
	return total
}

// IsLowStock reports whether the aggregate stock is below threshold.
func (p Product) IsLowStock(threshold int) bool {
	return p.TotalStock() < threshold
}

// StockValue sums sellingPrice × stockQuantity across variants.
func (p Product) StockValue() decimal.Decimal {
	total := decimal.Zero
	for _, v := range p.Variants {
		total = total.Add(v.Value())
	}
	return total
}

// PriceRange returns the lowest and highest selling price. A product with no
// variants yields (0, 0).
func (p Product) PriceRange() (lo, hi decimal.Decimal) {
	if len(p.Variants) == 0 {
		return decimal.Zero, decimal.Zero
	}

	lo, hi = p.Variants[0].SellingPrice, p.Variants[0].SellingPrice
	for _, v := range p.Variants[1:] {
		if v.SellingPrice.LessThan(lo) {
			lo = v.SellingPrice
		}
		if v.SellingPrice.GreaterThan(hi) {
			hi = v.SellingPrice
		}
	}
	return lo, hi
}

// LowStockVariants yields every variant classified LowStock or OutOfStock.
// The sequence reads p.Variants on each iteration, so it can be ranged over
// more than once.
func (p Product) LowStockVariants(threshold int) iter.Seq[Variant] {
	return func(yield func(Variant) bool) {
		for _, v := range p.Variants {
			if Classify(v, threshold) == InStock {
				continue
			}
			if !yield(v.clone()) {
				return
			}
		}
	}
}

// Variant returns a copy of the variant at i.
func (p Product) Variant(i int) (Variant, error) {
	if i < 0 || i >= len(p.Variants) {
		return Variant{}, ErrVariantOutOfRange
	}
	return p.Variants[i].clone(), nil
}

// WithVariant returns a copy of p whose i-th variant is replaced by v.
func (p Product) WithVariant(i int, v Variant) (Product, error) {
	if i < 0 || i >= len(p.Variants) {
		return p, ErrVariantOutOfRange
	}
	out := p.Clone()
	out.Variants[i] = v.clone()
	return out, nil
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	out := p
	if p.LastRestocked != nil {
		t := *p.LastRestocked
		out.LastRestocked = &t
	}
	out.Variants = make([]Variant, len(p.Variants))
	for i, v := range p.Variants {
		out.Variants[i] = v.clone()
	}
	return out
}

// Matches ANDs three predicates: case-insensitive substring match on the
// name, case-insensitive category match (empty or "all" matches anything)
// and owner equality.
func Matches(p Product, f Filter) bool {
	if p.OwnerID != f.OwnerID {
		return false
	}

	cat := strings.TrimSpace(f.Category)
	if cat != "" && !strings.EqualFold(cat, CategoryAll) && !strings.EqualFold(cat, p.Category) {
		return false
	}

	term := strings.TrimSpace(f.Search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term))
}

// FilterProducts keeps the products matching f, preserving order.
func FilterProducts(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if Matches(p, f) {
			out = append(out, p)
		}
	}
	return slices.Clip(out)
}

// ValidateNew checks a product before it is first persisted. Legacy records
// with no variants are still readable; they just cannot be added.
func ValidateNew(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidProductName
	}
	if len(p.Variants) == 0 {
		return ErrNoVariants
	}
	for _, v := range p.Variants {
		if v.SellingPrice.IsNegative() || v.StockPrice.IsNegative() {
			return ErrInvalidVariantPrice
		}
		if v.StockQuantity < 0 {
			return ErrInvalidVariantStock
		}
	}
	return nil
}

// DeriveStatus keeps a discontinued tag and otherwise reflects stock.
func DeriveStatus(p Product) string {
	if p.Status == StatusDiscontinued {
		return StatusDiscontinued
	}
	if p.TotalStock() == 0 {
		return StatusOutOfStock
	}
	return StatusAvailable
}
