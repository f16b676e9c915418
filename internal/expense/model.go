package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryInventory   Category = "inventory"
	CategoryRent        Category = "rent"
	CategoryUtilities   Category = "utilities"
	CategorySalaries    Category = "salaries"
	CategoryMarketing   Category = "marketing"
	CategoryShipping    Category = "shipping"
	CategoryEquipment   Category = "equipment"
	CategoryMaintenance Category = "maintenance"
	CategoryOther       Category = "other"
)

// CategoryAll selects every category in a Filter.
const CategoryAll = "all"

var categories = []Category{
	CategoryInventory,
	CategoryRent,
	CategoryUtilities,
	CategorySalaries,
	CategoryMarketing,
	CategoryShipping,
	CategoryEquipment,
	CategoryMaintenance,
	CategoryOther,
}

// Categories lists the fixed set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

type Expense struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"uid"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Filter narrows an expense list. Category is exact-match or CategoryAll;
// From and To are inclusive and either may be nil.
type Filter struct {
	Category string
	From     *time.Time
	To       *time.Time
}

// Matches reports whether e passes every set criterion in f.
func (f Filter) Matches(e Expense) bool {
	if f.Category != "" && f.Category != CategoryAll && string(e.Category) != f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}
