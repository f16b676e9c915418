// Package httpapi exposes the back-office services as JSON over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"shopdesk-be/internal/cart"
	"shopdesk-be/internal/category"
	"shopdesk-be/internal/expense"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/product"
	"shopdesk-be/internal/report"
	"shopdesk-be/internal/utils"
)

// Carts opens the cart session of a store owner for a session id.
type Carts interface {
	Open(ctx context.Context, ownerID, sessionID string) (*cart.Session, error)
}

type Handler struct {
	Products   product.Service
	Categories category.Service
	Carts      Carts
	Orders     order.Service
	Expenses   expense.Service
	Reports    report.Service
	Counters   *metrics.Registry
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("GET /products/low-stock", h.lowStockProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("DELETE /products/{id}", h.deleteProduct)
	mux.HandleFunc("PATCH /products/{id}/variants/{index}/stock", h.adjustStock)

	mux.HandleFunc("GET /categories", h.listCategories)
	mux.HandleFunc("POST /categories", h.createCategory)
	mux.HandleFunc("PATCH /categories/{id}", h.setCategoryActive)
	mux.HandleFunc("DELETE /categories/{id}", h.deleteCategory)

	mux.HandleFunc("GET /cart", h.getCart)
	mux.HandleFunc("DELETE /cart", h.clearCart)
	mux.HandleFunc("POST /cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("POST /checkout", h.checkout)

	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("POST /orders", h.createAdminOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /orders/{id}/status", h.updateOrderStatus)

	mux.HandleFunc("GET /expenses", h.listExpenses)
	mux.HandleFunc("POST /expenses", h.createExpense)
	mux.HandleFunc("DELETE /expenses/{id}", h.deleteExpense)

	mux.HandleFunc("GET /reports/summary", h.summary)
	mux.HandleFunc("GET /metrics", h.metricsSnapshot)

	return mux
}

// owner returns the scoped owner id, answering 400 when it is missing.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := logger.OwnerIDFrom(r.Context())
	if id == "" {
		utils.WriteJSONError(w, "X-Owner-ID header is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (h *Handler) metricsSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.Counters.Snapshot())
}
