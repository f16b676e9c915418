package expense

import (
	"context"
	"database/sql"
	"fmt"

	"shopdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, e Expense) (*Expense, error)
	List(ctx context.Context, ownerID string) ([]Expense, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e Expense) (*Expense, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateExpense"),
		zap.String("owner_id", e.OwnerID),
	)

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, `
	INSERT INTO expenses (id, owner_id, title, amount, category, expense_date, notes)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	RETURNING created_at
	`,
		e.ID,
		e.OwnerID,
		e.Title,
		e.Amount,
		e.Category,
		e.Date,
		e.Notes,
	).Scan(&e.CreatedAt)
	if err != nil {
		log.Error("failed to insert expense", zap.String("expense_id", e.ID), zap.Error(err))
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	return &e, nil
}

func (r *repository) List(ctx context.Context, ownerID string) ([]Expense, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListExpenses"),
		zap.String("owner_id", ownerID),
	)

	rows, err := r.db.QueryContext(ctx, `
	SELECT id, owner_id, title, amount, category, expense_date, notes, created_at
	FROM expenses
	WHERE owner_id = $1
	ORDER BY expense_date DESC, created_at DESC
	`, ownerID)
	if err != nil {
		log.Error("failed to query expenses", zap.Error(err))
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]Expense, 0)
	for rows.Next() {
		var e Expense
		if err := rows.Scan(
			&e.ID,
			&e.OwnerID,
			&e.Title,
			&e.Amount,
			&e.Category,
			&e.Date,
			&e.Notes,
			&e.CreatedAt,
		); err != nil {
			log.Error("failed to scan expense", zap.Error(err))
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate expenses", zap.Error(err))
		return nil, err
	}

	return expenses, nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteExpense"),
		zap.String("owner_id", ownerID),
		zap.String("expense_id", id),
	)

	res, err := r.db.ExecContext(ctx, `
	DELETE FROM expenses
	WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		log.Error("failed to delete expense", zap.Error(err))
		return fmt.Errorf("delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read affected rows", zap.Error(err))
		return err
	}
	if affected == 0 {
		log.Debug("expense not found")
		return ErrExpenseNotFound
	}
	return nil
}
