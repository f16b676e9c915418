package product

import (
	"context"
	"errors"
	"time"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

// Service is the owner-scoped catalog used by list screens, the cart and the
// reports.
type Service interface {
	ListProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetProduct(ctx context.Context, ownerID, id string) (*Product, error)
	CreateProduct(ctx context.Context, p Product) (*Product, error)
	AdjustVariantStock(ctx context.Context, ownerID, productID string, variantIndex, delta int) (*Product, error)
	LowStockProducts(ctx context.Context, ownerID string) ([]Product, error)
	DeleteProduct(ctx context.Context, ownerID, id string) error
	Threshold() int
}

type service struct {
	repo      Repository
	threshold int
	now       func() time.Time
}

// NewService creates a catalog service. A non-positive threshold falls back
// to DefaultLowStockThreshold.
func NewService(repo Repository, lowStockThreshold int) Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &service{repo: repo, threshold: lowStockThreshold, now: time.Now}
}

func (s *service) Threshold() int {
	return s.threshold
}

func (s *service) ListProducts(ctx context.Context, filter Filter) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
		zap.String("owner_id", filter.OwnerID),
	)

	products, err := s.repo.ListProducts(ctx, filter.OwnerID)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	matched := FilterProducts(products, filter)

	log.Debug("list products success",
		zap.Int("total", len(products)),
		zap.Int("matched", len(matched)),
		zap.String("search", filter.Search),
		zap.String("category", filter.Category),
	)
	return matched, nil
}

// GetProduct returns ErrProductNotFound for products of other owners.
func (s *service) GetProduct(ctx context.Context, ownerID, id string) (*Product, error) {
	return s.repo.GetProduct(ctx, ownerID, id)
}

func (s *service) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
		zap.String("owner_id", p.OwnerID),
		zap.String("name", p.Name),
	)

	if err := ValidateNew(p); err != nil {
		log.Warn("invalid product", zap.Error(err))
		return nil, err
	}

	p = p.Clone()
	p.Status = DeriveStatus(p)
	if p.LastRestocked == nil {
		now := s.now()
		p.LastRestocked = &now
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", created.ID))
	return created, nil
}

// AdjustVariantStock applies delta to one variant of an owner's product. A
// result below zero is rejected with *NegativeStockError carrying the
// current stock. The write is relative, so concurrent adjustments compose.
func (s *service) AdjustVariantStock(ctx context.Context, ownerID, productID string, variantIndex, delta int) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdjustVariantStock"),
		zap.String("owner_id", ownerID),
		zap.String("product_id", productID),
		zap.Int("variant_index", variantIndex),
		zap.Int("delta", delta),
	)

	p, err := s.repo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		log.Warn("product lookup failed", zap.Error(err))
		return nil, err
	}

	v, err := p.Variant(variantIndex)
	if err != nil {
		return nil, err
	}

	if _, err := AdjustStock(v, delta); err != nil {
		var nse *NegativeStockError
		if errors.As(err, &nse) {
			nse.ProductID = productID
			nse.VariantIndex = variantIndex
		}
		log.Warn("stock adjustment rejected", zap.Int("current", v.StockQuantity))
		return nil, err
	}

	adj := StockAdjustment{
		OwnerID:      ownerID,
		ProductID:    productID,
		VariantIndex: variantIndex,
		Delta:        delta,
	}
	if delta > 0 {
		now := s.now()
		adj.RestockedAt = &now
	}

	if err := s.repo.AdjustVariantStock(ctx, adj); err != nil {
		if errors.Is(err, ErrNegativeStock) {
			log.Warn("stock adjustment lost a race", zap.Error(err))
		} else {
			log.Error("failed to persist stock", zap.Error(err))
		}
		return nil, err
	}

	updated, err := s.repo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		log.Error("failed to reload product", zap.Error(err))
		return nil, err
	}

	log.Info("stock adjusted", zap.Int("from", v.StockQuantity))
	return updated, nil
}

func (s *service) LowStockProducts(ctx context.Context, ownerID string) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	low := make([]Product, 0)
	for _, p := range products {
		if p.IsLowStock(s.threshold) {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *service) DeleteProduct(ctx context.Context, ownerID, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteProduct"),
		zap.String("owner_id", ownerID),
		zap.String("product_id", id),
	)

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		log.Warn("failed to delete product", zap.Error(err))
		return err
	}

	log.Info("product deleted")
	return nil
}
