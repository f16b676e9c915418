package cart

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart. Price is frozen when the item is first
// added and never refreshed from the catalog.
type CartItem struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	VariantIndex int             `json:"variantIndex"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Category     string          `json:"category"`
	Image        string          `json:"image,omitempty"`
}

// ItemID is the cart key for a product variant.
func ItemID(productID string, variantIndex int) string {
	return fmt.Sprintf("%s#%d", productID, variantIndex)
}

// Receipt is what a confirmation screen needs about the last placed order.
type Receipt struct {
	OrderID   string          `json:"orderId"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// View is the serialisable form of a State.
type View struct {
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Total     decimal.Decimal `json:"total"`
	LastOrder *Receipt        `json:"lastOrder,omitempty"`
}

func cloneItems(items []CartItem) []CartItem {
	if items == nil {
		return []CartItem{}
	}
	return slices.Clone(items)
}
