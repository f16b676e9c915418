package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopdesk-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{
	"id", "owner_id", "customer_name", "customer_email", "customer_phone",
	"customer_address", "payment_method", "payment_status", "delivery_status", "notes",
	"subtotal", "tax", "tax_rate", "total", "source", "created_at", "created_by",
}

var itemCols = []string{
	"order_id", "product_id", "variant_index", "name", "quantity", "unit_price", "line_total",
}

func TestRepository_SaveOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	o, err := CreateStorefrontOrder(Input{OwnerID: "owner-1", Items: sampleItems(), Customer: customer(), PaymentMethod: PaymentCard, TaxRate: rate})
	require.NoError(t, err)

	t.Run("Inserts and reserves stock", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).
			WithArgs(o.ID, "owner-1", "Thandi Mokoena", "thandi@example.com", "", "12 Long St",
				"card", "pending", "pending", "",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				"storefront", sqlmock.AnyArg(), "").
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(o.ID, 0, "p-1", 0, "Linen Shirt", 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants SET stock_quantity = stock_quantity - \$1 WHERE product_id = \$2 AND position = \$3 AND stock_quantity >= \$1`).
			WithArgs(2, "p-1", 0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(o.ID, 1, "p-2", 1, "Mug", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).
			WithArgs(1, "p-2", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`UPDATE products SET status = CASE (.+) WHERE id = \$1 AND status <> \$4`).
			WithArgs("p-1", product.StatusOutOfStock, product.StatusAvailable, product.StatusDiscontinued).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET status = CASE`).
			WithArgs("p-2", product.StatusOutOfStock, product.StatusAvailable, product.StatusDiscontinued).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveOrder(ctx, *o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Status refreshed once per product", func(t *testing.T) {
		items := []LineItem{
			{ProductID: "p-1", VariantIndex: 0, Name: "Linen Shirt (S)", Quantity: 1, UnitPrice: dec("45.99")},
			{ProductID: "p-1", VariantIndex: 1, Name: "Linen Shirt (M)", Quantity: 1, UnitPrice: dec("45.99")},
		}
		two, err := CreateStorefrontOrder(Input{OwnerID: "owner-1", Items: items, Customer: customer(), PaymentMethod: PaymentCash, TaxRate: rate})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).WithArgs(1, "p-1", 0).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).WithArgs(1, "p-1", 1).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET status = CASE`).
			WithArgs("p-1", product.StatusOutOfStock, product.StatusAvailable, product.StatusDiscontinued).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveOrder(ctx, *two))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Status refresh failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET status = CASE`).WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		err := repo.SaveOrder(ctx, *o)
		assert.ErrorContains(t, err, "refresh product status")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient stock rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).
			WithArgs(2, "p-1", 0).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT stock_quantity FROM product_variants WHERE product_id = \$1 AND position = \$2`).
			WithArgs("p-1", 0).
			WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.SaveOrder(ctx, *o)
		require.ErrorIs(t, err, product.ErrNegativeStock)

		var nse *product.NegativeStockError
		require.ErrorAs(t, err, &nse)
		assert.Equal(t, "p-1", nse.ProductID)
		assert.Equal(t, 1, nse.Current)
		assert.Equal(t, -2, nse.Delta)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing variant", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE product_variants`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT stock_quantity`).
			WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}))
		mock.ExpectRollback()

		err := repo.SaveOrder(ctx, *o)
		assert.ErrorIs(t, err, product.ErrVariantOutOfRange)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()

		err := repo.SaveOrder(ctx, *o)
		assert.ErrorContains(t, err, "insert order")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	createdAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM orders WHERE id = \$1 AND owner_id = \$2`).
			WithArgs("ORD-1", "owner-1").
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				"ORD-1", "owner-1", "Thandi", "t@example.com", "", "12 Long St",
				"CASH", "Paid", "In_Transit", "",
				"121.97", "18.2955", "0.15", "140.2655", "storefront", createdAt, "sess-1",
			))
		mock.ExpectQuery(`FROM order_items WHERE order_id = ANY\(\$1\)`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow("ORD-1", "p-1", 0, "Linen Shirt", 2, "45.99", "91.98").
				AddRow("ORD-1", "p-2", 1, "Mug", 1, "29.99", "29.99"))

		o, err := repo.GetOrder(ctx, "owner-1", "ORD-1")
		require.NoError(t, err)

		assert.Equal(t, PaymentCash, o.PaymentMethod)
		assert.Equal(t, PaymentPaid, o.PaymentStatus)
		assert.Equal(t, DeliveryInTransit, o.DeliveryStatus)
		assert.True(t, dec("140.2655").Equal(o.Total))
		require.Len(t, o.Items, 2)
		assert.Equal(t, 1, o.Items[1].VariantIndex)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE id = \$1 AND owner_id = \$2`).
			WithArgs("nope", "owner-1").
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetOrder(ctx, "owner-1", "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other owner's order", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE id = \$1 AND owner_id = \$2`).
			WithArgs("ORD-1", "owner-2").
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetOrder(ctx, "owner-2", "ORD-1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	createdAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE owner_id = \$1`).
			WithArgs("owner-1").
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow("ORD-2", "owner-1", "A", "a@example.com", "", "", "card", "pending", "pending", "", "10", "1.5", "0.15", "11.5", "storefront", createdAt, "sess-1").
				AddRow("ORD-1", "owner-1", "B", "", "082", "", "eft", "paid", "delivered", "", "20", "3", "0.15", "23", "admin", createdAt, "admin-1"))
		mock.ExpectQuery(`FROM order_items`).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow("ORD-2", "p-1", 0, "Shirt", 1, "10", "10"))

		orders, err := repo.ListOrders(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Len(t, orders[0].Items, 1)
		assert.NotNil(t, orders[1].Items)
		assert.Empty(t, orders[1].Items)
		assert.Equal(t, SourceAdmin, orders[1].Source)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty skips items query", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE owner_id = \$1`).
			WithArgs("owner-9").
			WillReturnRows(sqlmock.NewRows(orderCols))

		orders, err := repo.ListOrders(ctx, "owner-9")
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders`).WillReturnError(errors.New("db down"))

		_, err := repo.ListOrders(ctx, "owner-1")
		assert.Error(t, err)
	})
}

func TestRepository_UpdateOrderStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Only supplied columns", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET payment_status = \$1, delivery_status = \$2 WHERE id = \$3 AND owner_id = \$4`).
			WithArgs("paid", "delivered", "ORD-1", "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateOrderStatus(ctx, "owner-1", "ORD-1", StatusUpdate{
			PaymentStatus:  ptr(PaymentPaid),
			DeliveryStatus: ptr(DeliveryDelivered),
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Notes only", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET notes = \$1 WHERE id = \$2 AND owner_id = \$3`).
			WithArgs("call first", "ORD-1", "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateOrderStatus(ctx, "owner-1", "ORD-1", StatusUpdate{Notes: ptr("call first")}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateOrderStatus(ctx, "owner-1", "nope", StatusUpdate{Notes: ptr("x")})
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Other owner's order", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET notes = \$1 WHERE id = \$2 AND owner_id = \$3`).
			WithArgs("x", "ORD-1", "owner-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateOrderStatus(ctx, "owner-2", "ORD-1", StatusUpdate{Notes: ptr("x")})
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing to edit", func(t *testing.T) {
		err := repo.UpdateOrderStatus(ctx, "owner-1", "ORD-1", StatusUpdate{})
		assert.ErrorIs(t, err, ErrNothingToEdit)
	})
}
