package category

import (
	"context"
	"strings"

	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/utils"

	"go.uber.org/zap"
)

// Service manages an owner's product categories.
type Service interface {
	ListCategories(ctx context.Context, params ListParams) ([]Category, error)
	AddCategory(ctx context.Context, ownerID, name, description string) (*Category, error)
	SetActive(ctx context.Context, ownerID, id string, active bool) error
	DeleteCategory(ctx context.Context, ownerID, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListCategories(ctx context.Context, params ListParams) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListCategories"),
		zap.String("owner_id", params.OwnerID),
		zap.String("search", utils.PtrString(params.Search)),
		zap.Int32("limit", utils.PtrInt32(params.Limit)),
	)

	if params.OwnerID == "" {
		return nil, ErrMissingOwner
	}

	categories, err := s.repo.List(ctx, params)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, err
	}

	log.Debug("ListCategories success", zap.Int("count", len(categories)))
	return categories, nil
}

// AddCategory creates an active category. Names are unique per owner.
func (s *service) AddCategory(ctx context.Context, ownerID, name, description string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddCategory"),
		zap.String("owner_id", ownerID),
		zap.String("name", name),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		log.Warn("AddCategory validation failed: empty name")
		return nil, ErrInvalidName
	}
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	created, err := s.repo.Create(ctx, Category{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Active:      true,
	})
	if err != nil {
		log.Error("failed to add category", zap.Error(err))
		return nil, err
	}

	log.Info("AddCategory success", zap.String("category_id", created.ID))
	return created, nil
}

func (s *service) SetActive(ctx context.Context, ownerID, id string, active bool) error {
	if err := s.repo.SetActive(ctx, ownerID, id, active); err != nil {
		logger.FromCtx(ctx).Warn("failed to update category",
			zap.String("layer", "service"),
			zap.String("category_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) DeleteCategory(ctx context.Context, ownerID, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteCategory"),
		zap.String("owner_id", ownerID),
		zap.String("category_id", id),
	)

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		log.Warn("failed to delete category", zap.Error(err))
		return err
	}

	log.Info("category deleted")
	return nil
}
