package report

import (
	"context"

	"shopdesk-be/internal/expense"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductSource interface {
	ListProducts(ctx context.Context, ownerID string) ([]product.Product, error)
}

type OrderSource interface {
	ListOrders(ctx context.Context, ownerID string) ([]order.Order, error)
}

type ExpenseSource interface {
	List(ctx context.Context, ownerID string) ([]expense.Expense, error)
}

// Summary is the dashboard view of one owner's books.
type Summary struct {
	ProductCount            int                        `json:"productCount"`
	TotalStockValue         decimal.Decimal            `json:"totalStockValue"`
	LowStockCount           int                        `json:"lowStockCount"`
	LowStockThreshold       int                        `json:"lowStockThreshold"`
	OrderCount              int                        `json:"orderCount"`
	TotalRevenue            decimal.Decimal            `json:"totalRevenue"`
	AverageOrderValue       decimal.Decimal            `json:"averageOrderValue"`
	TotalExpenses           decimal.Decimal            `json:"totalExpenses"`
	ExpensesByCategory      map[string]decimal.Decimal `json:"expensesByCategory"`
	NetProfit               decimal.Decimal            `json:"netProfit"`
	PaymentStatusBreakdown  map[string]int             `json:"paymentStatusBreakdown"`
	DeliveryStatusBreakdown map[string]int             `json:"deliveryStatusBreakdown"`
}

type Service interface {
	Dashboard(ctx context.Context, ownerID string, filter expense.Filter) (*Summary, error)
}

type service struct {
	products  ProductSource
	orders    OrderSource
	expenses  ExpenseSource
	threshold int
}

func NewService(products ProductSource, orders OrderSource, expenses ExpenseSource, lowStockThreshold int) Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = product.DefaultLowStockThreshold
	}
	return &service{
		products:  products,
		orders:    orders,
		expenses:  expenses,
		threshold: lowStockThreshold,
	}
}

// Dashboard loads the owner's products, orders and expenses and reduces
// them to a Summary. The expense filter applies to expense figures only.
func (s *service) Dashboard(ctx context.Context, ownerID string, filter expense.Filter) (*Summary, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Dashboard"),
		zap.String("owner_id", ownerID),
	)
	timer := metrics.StartTimer()

	products, err := s.products.ListProducts(ctx, ownerID)
	if err != nil {
		log.Error("failed to load products", zap.Error(err))
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx, ownerID)
	if err != nil {
		log.Error("failed to load orders", zap.Error(err))
		return nil, err
	}
	expenses, err := s.expenses.List(ctx, ownerID)
	if err != nil {
		log.Error("failed to load expenses", zap.Error(err))
		return nil, err
	}

	revenue := TotalRevenue(orders)
	spent := FilteredExpenses(expenses, filter)

	summary := &Summary{
		ProductCount:            len(products),
		TotalStockValue:         TotalStockValue(products),
		LowStockCount:           LowStockCount(products, s.threshold),
		LowStockThreshold:       s.threshold,
		OrderCount:              len(orders),
		TotalRevenue:            revenue,
		AverageOrderValue:       AverageOrderValue(orders),
		TotalExpenses:           spent,
		ExpensesByCategory:      ExpensesByCategory(expenses, filter),
		NetProfit:               revenue.Sub(spent),
		PaymentStatusBreakdown:  PaymentStatusBreakdown(orders),
		DeliveryStatusBreakdown: DeliveryStatusBreakdown(orders),
	}

	log.Debug("dashboard computed",
		zap.Int("products", summary.ProductCount),
		zap.Int("orders", summary.OrderCount),
		zap.String("revenue", revenue.String()),
		zap.Duration("took", timer.Duration()),
	)
	return summary, nil
}
