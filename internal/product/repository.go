package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository is the catalog provider backed by Postgres. Every list query is
// scoped by owner.
type Repository interface {
	ListProducts(ctx context.Context, ownerID string) ([]Product, error)
	GetProduct(ctx context.Context, ownerID, id string) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	AdjustVariantStock(ctx context.Context, adj StockAdjustment) error
	Delete(ctx context.Context, ownerID, id string) error
}

// StockAdjustment is a relative change to one variant's quantity. The
// product status is re-derived in the same transaction.
type StockAdjustment struct {
	OwnerID      string
	ProductID    string
	VariantIndex int
	Delta        int
	RestockedAt  *time.Time
}

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id,
	owner_id,
	name,
	category,
	supplier,
	batch_number,
	status,
	last_restocked,
	product_image`

func (r *repository) ListProducts(ctx context.Context, ownerID string) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT`+productColumns+`
	FROM products
	WHERE owner_id = $1
	ORDER BY name ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	ids := make([]string, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return products, nil
	}

	variants, err := r.loadVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Variants = variants[products[i].ID]
		if products[i].Variants == nil {
			products[i].Variants = []Variant{}
		}
	}

	return products, nil
}

func (r *repository) GetProduct(ctx context.Context, ownerID, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT`+productColumns+`
	FROM products
	WHERE id = $1 AND owner_id = $2
	`, id, ownerID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants, err := r.loadVariants(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	p.Variants = variants[id]
	if p.Variants == nil {
		p.Variants = []Variant{}
	}

	return &p, nil
}

// loadVariants fetches the variants of all ids in one query, keyed by
// product id and ordered by position.
func (r *repository) loadVariants(ctx context.Context, ids []string) (map[string][]Variant, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT
		product_id,
		type,
		color,
		size,
		selling_price,
		stock_price,
		stock_quantity,
		description,
		images
	FROM product_variants
	WHERE product_id = ANY($1)
	ORDER BY product_id, position ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Variant, len(ids))
	for rows.Next() {
		var (
			productID string
			v         Variant
			images    pq.StringArray
		)
		if err := rows.Scan(
			&productID,
			&v.Type,
			&v.Color,
			&v.Size,
			&v.SellingPrice,
			&v.StockPrice,
			&v.StockQuantity,
			&v.Description,
			&images,
		); err != nil {
			return nil, err
		}
		v.Images = []string(images)
		if v.Images == nil {
			v.Images = []string{}
		}
		out[productID] = append(out[productID], v)
	}

	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
		zap.String("owner_id", p.OwnerID),
	)

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var restocked sql.NullTime
	if p.LastRestocked != nil {
		restocked = sql.NullTime{Time: *p.LastRestocked, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO products (
		id, owner_id, name, category, supplier,
		batch_number, status, last_restocked, product_image
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Category,
		p.Supplier,
		p.BatchNumber,
		p.Status,
		restocked,
		p.ProductImage,
	)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, fmt.Errorf("insert product: %w", err)
	}

	for i, v := range p.Variants {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO product_variants (
			product_id, position, type, color, size,
			selling_price, stock_price, stock_quantity, description, images
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			p.ID,
			i,
			v.Type,
			v.Color,
			v.Size,
			v.SellingPrice,
			v.StockPrice,
			v.StockQuantity,
			v.Description,
			pq.Array(v.Images),
		)
		if err != nil {
			log.Error("failed to insert variant", zap.Int("position", i), zap.Error(err))
			return nil, fmt.Errorf("insert variant %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Debug("product created", zap.String("product_id", p.ID), zap.Int("variants", len(p.Variants)))
	return &p, nil
}

// AdjustVariantStock adds adj.Delta to the stored quantity in a single
// guarded statement, so concurrent adjustments never overwrite each other.
// When the guard fails the current quantity is read back and returned in a
// *NegativeStockError.
func (r *repository) AdjustVariantStock(ctx context.Context, adj StockAdjustment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AdjustVariantStock"),
		zap.String("product_id", adj.ProductID),
		zap.Int("variant_index", adj.VariantIndex),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
	UPDATE product_variants
	SET stock_quantity = stock_quantity + $1
	WHERE product_id = $2
		AND position = $3
		AND stock_quantity + $1 >= 0
		AND product_id IN (SELECT id FROM products WHERE owner_id = $4)
	`, adj.Delta, adj.ProductID, adj.VariantIndex, adj.OwnerID)
	if err != nil {
		log.Error("failed to adjust variant stock", zap.Error(err))
		return fmt.Errorf("adjust variant stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var current int
		err := tx.QueryRowContext(ctx, `
		SELECT v.stock_quantity
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.product_id = $1 AND v.position = $2 AND p.owner_id = $3
		`, adj.ProductID, adj.VariantIndex, adj.OwnerID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("read variant stock: %w", err)
		}
		log.Warn("stock adjustment rejected", zap.Int("current", current), zap.Int("delta", adj.Delta))
		return &NegativeStockError{
			ProductID:    adj.ProductID,
			VariantIndex: adj.VariantIndex,
			Current:      current,
			Delta:        adj.Delta,
		}
	}

	if err := RefreshStatus(ctx, tx, adj.ProductID); err != nil {
		log.Error("failed to refresh status", zap.Error(err))
		return err
	}

	if adj.RestockedAt != nil {
		if _, err := tx.ExecContext(ctx, `
		UPDATE products
		SET last_restocked = $1
		WHERE id = $2
		`, *adj.RestockedAt, adj.ProductID); err != nil {
			return fmt.Errorf("stamp restock date: %w", err)
		}
	}

	return tx.Commit()
}

// RefreshStatus re-derives the stored status of productID from the sum of
// its variant stock. Discontinued products are left alone.
func RefreshStatus(ctx context.Context, ex Execer, productID string) error {
	_, err := ex.ExecContext(ctx, `
	UPDATE products
	SET status = CASE
		WHEN (SELECT COALESCE(SUM(stock_quantity), 0) FROM product_variants WHERE product_id = $1) = 0 THEN $2
		ELSE $3
	END
	WHERE id = $1 AND status <> $4
	`, productID, StatusOutOfStock, StatusAvailable, StatusDiscontinued)
	if err != nil {
		return fmt.Errorf("refresh product status: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM products
	WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (Product, error) {
	var (
		p         Product
		restocked sql.NullTime
	)
	err := s.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Category,
		&p.Supplier,
		&p.BatchNumber,
		&p.Status,
		&restocked,
		&p.ProductImage,
	)
	if err != nil {
		return Product{}, err
	}
	if restocked.Valid {
		t := restocked.Time
		p.LastRestocked = &t
	}
	return p, nil
}
