package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// SaveOrder inserts o with its line items and reserves stock for every
	// line in the same transaction. The status of every touched product is
	// re-derived before commit.
	SaveOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, ownerID, id string) (*Order, error)
	ListOrders(ctx context.Context, ownerID string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, ownerID, id string, u StatusUpdate) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id,
	owner_id,
	customer_name,
	customer_email,
	customer_phone,
	customer_address,
	payment_method,
	payment_status,
	delivery_status,
	notes,
	subtotal,
	tax,
	tax_rate,
	total,
	source,
	created_at,
	created_by`

func (r *repository) SaveOrder(ctx context.Context, o Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SaveOrder"),
		zap.String("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO orders (
		id, owner_id, customer_name, customer_email, customer_phone,
		customer_address, payment_method, payment_status, delivery_status, notes,
		subtotal, tax, tax_rate, total, source, created_at, created_by
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		o.ID,
		o.OwnerID,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.Customer.Address,
		o.PaymentMethod,
		o.PaymentStatus,
		o.DeliveryStatus,
		o.Notes,
		o.Subtotal,
		o.Tax,
		o.TaxRate,
		o.Total,
		o.Source,
		o.CreatedAt,
		o.CreatedBy,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO order_items (
			order_id, position, product_id, variant_index,
			name, quantity, unit_price, line_total
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			o.ID,
			i,
			it.ProductID,
			it.VariantIndex,
			it.Name,
			it.Quantity,
			it.UnitPrice,
			it.LineTotal,
		)
		if err != nil {
			log.Error("failed to insert order item", zap.Int("position", i), zap.Error(err))
			return fmt.Errorf("insert order item %d: %w", i, err)
		}

		if err := reserveStock(ctx, tx, it); err != nil {
			log.Warn("stock reservation rejected",
				zap.String("product_id", it.ProductID),
				zap.Int("variant_index", it.VariantIndex),
				zap.Error(err),
			)
			return err
		}
	}

	refreshed := make(map[string]bool, len(o.Items))
	for _, it := range o.Items {
		if refreshed[it.ProductID] {
			continue
		}
		refreshed[it.ProductID] = true
		if err := product.RefreshStatus(ctx, tx, it.ProductID); err != nil {
			log.Error("failed to refresh product status", zap.String("product_id", it.ProductID), zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

// reserveStock decrements the variant only when enough stock remains. A
// rejected decrement reports the quantity actually on hand.
func reserveStock(ctx context.Context, tx *sql.Tx, it LineItem) error {
	res, err := tx.ExecContext(ctx, `
	UPDATE product_variants
	SET stock_quantity = stock_quantity - $1
	WHERE product_id = $2 AND position = $3 AND stock_quantity >= $1
	`, it.Quantity, it.ProductID, it.VariantIndex)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var current int
	err = tx.QueryRowContext(ctx, `
	SELECT stock_quantity
	FROM product_variants
	WHERE product_id = $1 AND position = $2
	`, it.ProductID, it.VariantIndex).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return product.ErrVariantOutOfRange
	}
	if err != nil {
		return fmt.Errorf("read stock: %w", err)
	}

	return &product.NegativeStockError{
		ProductID:    it.ProductID,
		VariantIndex: it.VariantIndex,
		Current:      current,
		Delta:        -it.Quantity,
	}
}

// GetOrder returns ErrOrderNotFound when id exists under another owner.
func (r *repository) GetOrder(ctx context.Context, ownerID, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT`+orderColumns+`
	FROM orders
	WHERE id = $1 AND owner_id = $2
	`, id, ownerID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []LineItem{}
	}

	return &o, nil
}

func (r *repository) ListOrders(ctx context.Context, ownerID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT`+orderColumns+`
	FROM orders
	WHERE owner_id = $1
	ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []LineItem{}
		}
	}

	return orders, nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT
		order_id,
		product_id,
		variant_index,
		name,
		quantity,
		unit_price,
		line_total
	FROM order_items
	WHERE order_id = ANY($1)
	ORDER BY order_id, position ASC
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]LineItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			it      LineItem
		)
		if err := rows.Scan(
			&orderID,
			&it.ProductID,
			&it.VariantIndex,
			&it.Name,
			&it.Quantity,
			&it.UnitPrice,
			&it.LineTotal,
		); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], it)
	}

	return out, rows.Err()
}

// UpdateOrderStatus writes only the fields present in u, on an order of
// ownerID.
func (r *repository) UpdateOrderStatus(ctx context.Context, ownerID, id string, u StatusUpdate) error {
	if u.IsEmpty() {
		return ErrNothingToEdit
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.PaymentStatus != nil {
		add("payment_status", *u.PaymentStatus)
	}
	if u.DeliveryStatus != nil {
		add("delivery_status", *u.DeliveryStatus)
	}
	if u.PaymentMethod != nil {
		add("payment_method", *u.PaymentMethod)
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}
	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
	UPDATE orders
	SET %s
	WHERE id = $%d AND owner_id = $%d
	`, strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (Order, error) {
	var (
		o                             Order
		method, paymentSt, deliverySt string
		source                        string
	)
	err := s.Scan(
		&o.ID,
		&o.OwnerID,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.Address,
		&method,
		&paymentSt,
		&deliverySt,
		&o.Notes,
		&o.Subtotal,
		&o.Tax,
		&o.TaxRate,
		&o.Total,
		&source,
		&o.CreatedAt,
		&o.CreatedBy,
	)
	if err != nil {
		return Order{}, err
	}

	// Older rows were written with upper-case enums.
	o.PaymentMethod, _ = ParsePaymentMethod(method)
	o.PaymentStatus, _ = ParsePaymentStatus(paymentSt)
	o.DeliveryStatus, _ = ParseDeliveryStatus(deliverySt)
	o.Source = Source(normalize(source))
	return o, nil
}
