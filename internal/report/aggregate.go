// Package report rolls catalog, order and expense collections up into
// dashboard figures. The reducers never fail; empty input yields zero.
package report

import (
	"strings"

	"shopdesk-be/internal/expense"
	"shopdesk-be/internal/money"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/product"

	"github.com/shopspring/decimal"
)

func TotalStockValue(products []product.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.StockValue())
	}
	return total
}

// LowStockCount counts products whose total stock is below threshold.
func LowStockCount(products []product.Product, threshold int) int {
	n := 0
	for _, p := range products {
		if p.IsLowStock(threshold) {
			n++
		}
	}
	return n
}

func TotalRevenue(orders []order.Order) decimal.Decimal {
	totals := make([]decimal.Decimal, len(orders))
	for i, o := range orders {
		totals[i] = o.Total
	}
	return money.Sum(totals...)
}

// AverageOrderValue is zero for an empty list.
func AverageOrderValue(orders []order.Order) decimal.Decimal {
	if len(orders) == 0 {
		return decimal.Zero
	}
	return TotalRevenue(orders).Div(decimal.NewFromInt(int64(len(orders))))
}

// FilteredExpenses sums the amounts of expenses passing f.
func FilteredExpenses(expenses []expense.Expense, f expense.Filter) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if f.Matches(e) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ExpensesByCategory sums the expenses passing f per category.
func ExpensesByCategory(expenses []expense.Expense, f expense.Filter) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if !f.Matches(e) {
			continue
		}
		key := string(e.Category)
		out[key] = out[key].Add(e.Amount)
	}
	return out
}

// PaymentStatusBreakdown counts orders per payment status, ignoring case.
func PaymentStatusBreakdown(orders []order.Order) map[string]int {
	return countBy(orders, func(o order.Order) string { return string(o.PaymentStatus) })
}

// DeliveryStatusBreakdown counts orders per delivery status, ignoring case.
func DeliveryStatusBreakdown(orders []order.Order) map[string]int {
	return countBy(orders, func(o order.Order) string { return string(o.DeliveryStatus) })
}

func countBy(orders []order.Order, key func(order.Order) string) map[string]int {
	out := make(map[string]int)
	for _, o := range orders {
		out[strings.ToLower(strings.TrimSpace(key(o)))]++
	}
	return out
}
