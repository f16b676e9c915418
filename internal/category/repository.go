package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shopdesk-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, params ListParams) ([]Category, error)
	Create(ctx context.Context, c Category) (*Category, error)
	SetActive(ctx context.Context, ownerID, id string, active bool) error
	Delete(ctx context.Context, ownerID, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const uniqueViolation = "23505"

func (r *repository) List(ctx context.Context, params ListParams) ([]Category, error) {
	// ---------- DEFAULTS ----------
	finalLimit := int32(50)
	finalPage := int32(1)

	if params.Limit != nil && *params.Limit > 0 {
		finalLimit = *params.Limit
	}
	if params.Page != nil && *params.Page > 0 {
		finalPage = *params.Page
	}
	finalOffset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("owner_id", params.OwnerID),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
	)

	// ---------- BASE QUERY ----------
	query := `
		SELECT
			c.id,
			c.owner_id,
			c.name,
			c.description,
			c.active
		FROM categories c
	`

	args := []any{params.OwnerID}
	where := []string{"c.owner_id = $1"}

	// ---------- FILTER ----------
	if params.Search != nil && *params.Search != "" {
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*params.Search+"%")
	}
	if params.ActiveOnly {
		where = append(where, "c.active = TRUE")
	}

	query += " WHERE " + strings.Join(where, " AND ")
	query += " ORDER BY c.name ASC"

	// ---------- PAGINATION ----------
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, finalOffset)

	log.Debug("executing category query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("category query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Category) (*Category, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (owner_id, name, description, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.OwnerID, c.Name, c.Description, c.Active).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}

	return &c, nil
}

func (r *repository) SetActive(ctx context.Context, ownerID, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET active = $1
		WHERE id = $2 AND owner_id = $3
	`, active, id, ownerID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res)
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM categories
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
