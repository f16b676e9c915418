package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is used when no threshold is configured.
const DefaultLowStockThreshold = 5

// Product lifecycle tags.
const (
	StatusAvailable    = "available"
	StatusOutOfStock   = "out of stock"
	StatusDiscontinued = "discontinued"
)

// CategoryAll is the wildcard category filter.
const CategoryAll = "all"

// Variant is one sellable configuration of a product.
type Variant struct {
	Type          string          `json:"type"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	StockPrice    decimal.Decimal `json:"stockPrice"`
	StockQuantity int             `json:"stockQuantity"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
}

type Product struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"uid"`
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Supplier      string     `json:"supplier"`
	BatchNumber   string     `json:"batchNumber"`
	Status        string     `json:"status"`
	LastRestocked *time.Time `json:"lastRestocked,omitempty"`
	ProductImage  string     `json:"productImage"`
	Variants      []Variant  `json:"variants"`
}

// StockLevel classifies on-hand quantity against a threshold.
type StockLevel int

const (
	InStock StockLevel = iota
	LowStock
	OutOfStock
)

func (l StockLevel) String() string {
	switch l {
	case OutOfStock:
		return "OUT_OF_STOCK"
	case LowStock:
		return "LOW_STOCK"
	default:
		return "IN_STOCK"
	}
}

// Filter is the single list-screen predicate input.
type Filter struct {
	Search   string
	Category string
	OwnerID  string
}
