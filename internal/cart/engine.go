package cart

import (
	"slices"

	"shopdesk-be/internal/money"

	"github.com/shopspring/decimal"
)

// State is an immutable cart. Totals are always derived from the items.
type State struct {
	items     []CartItem
	lastOrder *Receipt
	taxRate   decimal.Decimal
}

// NewState returns an empty cart taxed at taxRate.
func NewState(taxRate decimal.Decimal) State {
	return State{items: []CartItem{}, taxRate: taxRate}
}

// Items returns a copy of the line items in insertion order.
func (s State) Items() []CartItem {
	return cloneItems(s.items)
}

func (s State) Len() int {
	return len(s.items)
}

func (s State) IsEmpty() bool {
	return len(s.items) == 0
}

func (s State) Find(id string) (CartItem, bool) {
	i := s.index(id)
	if i < 0 {
		return CartItem{}, false
	}
	return s.items[i], true
}

func (s State) LastOrder() (Receipt, bool) {
	if s.lastOrder == nil {
		return Receipt{}, false
	}
	return *s.lastOrder, true
}

func (s State) TaxRate() decimal.Decimal {
	return s.taxRate
}

// ItemCount is Σ quantity.
func (s State) ItemCount() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Subtotal is Σ price × quantity.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(money.Line(it.Price, it.Quantity))
	}
	return total
}

func (s State) Tax() decimal.Decimal {
	return money.ApplyRate(s.Subtotal(), s.taxRate)
}

func (s State) Total() decimal.Decimal {
	sub := s.Subtotal()
	return sub.Add(money.ApplyRate(sub, s.taxRate))
}

func (s State) View() View {
	v := View{
		Items:     s.Items(),
		ItemCount: s.ItemCount(),
		Subtotal:  s.Subtotal(),
		Tax:       s.Tax(),
		TaxRate:   s.taxRate,
		Total:     s.Total(),
	}
	if r, ok := s.LastOrder(); ok {
		v.LastOrder = &r
	}
	return v
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.items, func(it CartItem) bool { return it.ID == id })
}

func (s State) withItems(items []CartItem) State {
	s.items = items
	return s
}

// Action is one cart transition. The set is closed: only the types in this
// file implement it.
type Action interface {
	Name() string
	reduce(State) State
}

// AddItem merges by id: an existing line gains one unit, otherwise the item
// is appended with quantity 1. Price and other fields of an existing line
// are left untouched.
type AddItem struct {
	Item CartItem
}

// RemoveItem drops the line with ID. Absent ids are a no-op.
type RemoveItem struct {
	ID string
}

// UpdateQuantity replaces the quantity of ID. Quantity ≤ 0 removes the line.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

// ClearCart empties the items and keeps the last order.
type ClearCart struct{}

// SetLastOrder records the most recently placed order.
type SetLastOrder struct {
	Receipt Receipt
}

// LoadCart replaces all items at session restore. The caller guarantees id
// uniqueness; lines with a non-positive quantity are dropped.
type LoadCart struct {
	Items []CartItem
}

func (AddItem) Name() string        { return "ADD_ITEM" }
func (RemoveItem) Name() string     { return "REMOVE_ITEM" }
func (UpdateQuantity) Name() string { return "UPDATE_QUANTITY" }
func (ClearCart) Name() string      { return "CLEAR_CART" }
func (SetLastOrder) Name() string   { return "SET_LAST_ORDER" }
func (LoadCart) Name() string       { return "LOAD_CART" }

func (a AddItem) reduce(s State) State {
	items := cloneItems(s.items)
	if i := s.index(a.Item.ID); i >= 0 {
		items[i].Quantity++
		return s.withItems(items)
	}

	it := a.Item
	it.Quantity = 1
	return s.withItems(append(items, it))
}

func (a RemoveItem) reduce(s State) State {
	items := make([]CartItem, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != a.ID {
			items = append(items, it)
		}
	}
	return s.withItems(items)
}

func (a UpdateQuantity) reduce(s State) State {
	if a.Quantity <= 0 {
		return RemoveItem{ID: a.ID}.reduce(s)
	}

	i := s.index(a.ID)
	if i < 0 {
		return s
	}
	items := cloneItems(s.items)
	items[i].Quantity = a.Quantity
	return s.withItems(items)
}

func (ClearCart) reduce(s State) State {
	return s.withItems([]CartItem{})
}

func (a SetLastOrder) reduce(s State) State {
	r := a.Receipt
	s.lastOrder = &r
	return s
}

func (a LoadCart) reduce(s State) State {
	items := make([]CartItem, 0, len(a.Items))
	for _, it := range a.Items {
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	return s.withItems(items)
}

// Reduce applies a to s and returns the next state. s is never modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	if s.items == nil {
		s.items = []CartItem{}
	}
	return a.reduce(s)
}
