package expense

import (
	"context"
	"strings"

	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Add(ctx context.Context, e Expense) (*Expense, error)
	List(ctx context.Context, ownerID string, filter Filter) ([]Expense, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Add(ctx context.Context, e Expense) (*Expense, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddExpense"),
		zap.String("owner_id", e.OwnerID),
	)

	e.Title = strings.TrimSpace(e.Title)
	e.Notes = strings.TrimSpace(e.Notes)
	if c, ok := ParseCategory(string(e.Category)); ok {
		e.Category = c
	}

	if err := Validate(e); err != nil {
		log.Warn("invalid expense", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		log.Error("failed to create expense", zap.Error(err))
		return nil, err
	}

	log.Info("expense added",
		zap.String("expense_id", created.ID),
		zap.String("category", string(created.Category)),
		zap.String("amount", created.Amount.String()),
	)
	return created, nil
}

// List returns the owner's expenses that pass filter, newest first.
func (s *service) List(ctx context.Context, ownerID string, filter Filter) ([]Expense, error) {
	expenses, err := s.repo.List(ctx, ownerID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list expenses",
			zap.String("layer", "service"),
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return nil, err
	}

	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteExpense"),
		zap.String("owner_id", ownerID),
		zap.String("expense_id", id),
	)

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		log.Warn("failed to delete expense", zap.Error(err))
		return err
	}

	log.Info("expense deleted")
	return nil
}
