package order

import (
	"context"
	"errors"
	"fmt"

	"shopdesk-be/internal/cart"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartSession is the part of a cart session checkout drives.
type CartSession interface {
	ID() string
	OwnerID() string
	State() cart.State
	Dispatch(ctx context.Context, a cart.Action) (cart.State, error)
}

// Catalog resolves admin selections to current prices.
type Catalog interface {
	GetProduct(ctx context.Context, ownerID, id string) (*product.Product, error)
}

// CheckoutRequest is what the storefront sends alongside its cart.
type CheckoutRequest struct {
	OwnerID       string        `json:"-"`
	Customer      Customer      `json:"customer"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Notes         string        `json:"notes,omitempty"`
}

// Selection is one row of an admin-assembled order.
type Selection struct {
	ProductID    string `json:"productId"`
	VariantIndex int    `json:"variantIndex"`
	Quantity     int    `json:"quantity"`
}

type AdminOrderRequest struct {
	OwnerID       string        `json:"-"`
	CreatedBy     string        `json:"-"`
	Items         []Selection   `json:"items"`
	Customer      Customer      `json:"customer"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Notes         string        `json:"notes,omitempty"`
}

type Service interface {
	Checkout(ctx context.Context, session CartSession, req CheckoutRequest) (*Order, error)
	PlaceAdminOrder(ctx context.Context, req AdminOrderRequest) (*Order, error)
	UpdateStatus(ctx context.Context, ownerID, id string, u StatusUpdate) (*Order, error)
	GetOrder(ctx context.Context, ownerID, id string) (*Order, error)
	ListOrders(ctx context.Context, ownerID string) ([]Order, error)
}

type service struct {
	repo         Repository
	catalog      Catalog
	factory      *Factory
	adminTaxRate decimal.Decimal
	counters     *metrics.Registry
}

// NewService wires the order service. Storefront orders take their tax rate
// from the cart; admin orders use adminTaxRate.
func NewService(repo Repository, catalog Catalog, adminTaxRate decimal.Decimal, counters *metrics.Registry) Service {
	if counters == nil {
		counters = metrics.NewRegistry()
	}
	return &service{
		repo:         repo,
		catalog:      catalog,
		factory:      NewFactory(),
		adminTaxRate: adminTaxRate,
		counters:     counters,
	}
}

func (s *service) Checkout(ctx context.Context, session CartSession, req CheckoutRequest) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("session_id", session.ID()),
		zap.String("owner_id", req.OwnerID),
	)

	if session.OwnerID() != req.OwnerID {
		log.Warn("cart opened for another store", zap.String("cart_owner_id", session.OwnerID()))
		return nil, ErrCartOwnerMismatch
	}

	state := session.State()
	o, err := s.factory.CreateStorefrontOrder(Input{
		OwnerID:       req.OwnerID,
		Items:         LineItemsFromCart(state.Items()),
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		TaxRate:       state.TaxRate(),
		CreatedBy:     session.ID(),
		Notes:         req.Notes,
	})
	if err != nil {
		s.counters.Counter(metrics.CheckoutFailures).Inc()
		log.Warn("checkout rejected", zap.Error(err))
		return nil, err
	}

	if err := s.save(ctx, log, *o); err != nil {
		s.counters.Counter(metrics.CheckoutFailures).Inc()
		return nil, err
	}

	// The order is stored; a failure to reset the cart is logged, not returned.
	// Only the lines that were ordered leave the cart, so items added while
	// checkout ran are kept.
	if _, err := session.Dispatch(ctx, cart.SetLastOrder{Receipt: o.Receipt()}); err != nil {
		log.Warn("failed to record last order", zap.Error(err))
	}
	for _, it := range state.Items() {
		if _, err := session.Dispatch(ctx, cart.RemoveItem{ID: it.ID}); err != nil {
			log.Warn("failed to remove ordered line", zap.String("item_id", it.ID), zap.Error(err))
		}
	}

	log.Info("checkout success",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.String()),
		zap.Int("items", o.ItemCount()),
	)
	return o, nil
}

func (s *service) PlaceAdminOrder(ctx context.Context, req AdminOrderRequest) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceAdminOrder"),
		zap.String("owner_id", req.OwnerID),
	)

	items, err := s.resolve(ctx, req.OwnerID, req.Items)
	if err != nil {
		log.Warn("failed to resolve selection", zap.Error(err))
		return nil, err
	}

	o, err := s.factory.CreateAdminOrder(Input{
		OwnerID:       req.OwnerID,
		Items:         items,
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		TaxRate:       s.adminTaxRate,
		CreatedBy:     req.CreatedBy,
		Notes:         req.Notes,
	})
	if err != nil {
		log.Warn("admin order rejected", zap.Error(err))
		return nil, err
	}

	if err := s.save(ctx, log, *o); err != nil {
		return nil, err
	}

	log.Info("admin order created", zap.String("order_id", o.ID), zap.String("total", o.Total.String()))
	return o, nil
}

// resolve prices each selection from the owner's catalog. Quantities are
// checked by the factory.
func (s *service) resolve(ctx context.Context, ownerID string, selections []Selection) ([]LineItem, error) {
	items := make([]LineItem, 0, len(selections))
	for _, sel := range selections {
		p, err := s.catalog.GetProduct(ctx, ownerID, sel.ProductID)
		if err != nil {
			return nil, err
		}
		if p.OwnerID != ownerID {
			return nil, fmt.Errorf("%s: %w", sel.ProductID, product.ErrProductNotFound)
		}
		v, err := p.Variant(sel.VariantIndex)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sel.ProductID, err)
		}

		name := p.Name
		if label := v.Label(); label != "" {
			name = fmt.Sprintf("%s (%s)", p.Name, label)
		}
		items = append(items, LineItem{
			ProductID:    p.ID,
			VariantIndex: sel.VariantIndex,
			Name:         name,
			Quantity:     sel.Quantity,
			UnitPrice:    v.SellingPrice,
		})
	}
	return items, nil
}

func (s *service) save(ctx context.Context, log *zap.Logger, o Order) error {
	if err := s.repo.SaveOrder(ctx, o); err != nil {
		if errors.Is(err, product.ErrNegativeStock) {
			s.counters.Counter(metrics.StockRejections).Inc()
			log.Warn("order rejected by stock reservation", zap.String("order_id", o.ID), zap.Error(err))
			return err
		}
		log.Error("failed to save order", zap.String("order_id", o.ID), zap.Error(err))
		return err
	}
	s.counters.Counter(metrics.OrdersCreated).Inc()
	return nil
}

// UpdateStatus edits an order of ownerID. Orders of other owners are
// reported as ErrOrderNotFound.
func (s *service) UpdateStatus(ctx context.Context, ownerID, id string, u StatusUpdate) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("owner_id", ownerID),
		zap.String("order_id", id),
	)

	current, err := s.repo.GetOrder(ctx, ownerID, id)
	if err != nil {
		log.Warn("order lookup failed", zap.Error(err))
		return nil, err
	}

	updated, err := current.ApplyUpdate(u)
	if err != nil {
		log.Warn("invalid status update", zap.Error(err))
		return nil, err
	}

	if err := s.repo.UpdateOrderStatus(ctx, ownerID, id, u); err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, err
	}
	s.counters.Counter(metrics.StatusUpdates).Inc()

	if from, to := current.DeliveryStatus, updated.DeliveryStatus; from != to && !from.IsForward(to) {
		log.Info("delivery status reassigned outside normal flow",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}

	log.Info("order status updated",
		zap.String("payment_status", string(updated.PaymentStatus)),
		zap.String("delivery_status", string(updated.DeliveryStatus)),
	)
	return &updated, nil
}

func (s *service) GetOrder(ctx context.Context, ownerID, id string) (*Order, error) {
	return s.repo.GetOrder(ctx, ownerID, id)
}

func (s *service) ListOrders(ctx context.Context, ownerID string) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListOrders"),
		zap.String("owner_id", ownerID),
	)

	orders, err := s.repo.ListOrders(ctx, ownerID)
	if err != nil {
		log.Error("failed to list orders", zap.Error(err))
		return nil, err
	}

	log.Debug("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}
