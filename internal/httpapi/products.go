package httpapi

import (
	"net/http"
	"strconv"

	"shopdesk-be/internal/money"
	"shopdesk-be/internal/product"
	"shopdesk-be/internal/utils"

	"github.com/shopspring/decimal"
)

// productView adds the derived stock figures to a product.
type productView struct {
	product.Product
	TotalStock       int             `json:"totalStock"`
	IsLowStock       bool            `json:"isLowStock"`
	StockValue       decimal.Decimal `json:"stockValue"`
	StockCost        decimal.Decimal `json:"stockCost"`
	MinPrice         string          `json:"minPrice"`
	MaxPrice         string          `json:"maxPrice"`
	StockLevels      []string        `json:"stockLevels"`
	LowStockVariants int             `json:"lowStockVariants"`
	SoldOutVariants  int             `json:"soldOutVariants"`
}

func newProductView(p product.Product, threshold int) productView {
	lo, hi := p.PriceRange()
	view := productView{
		Product:     p,
		TotalStock:  p.TotalStock(),
		IsLowStock:  p.IsLowStock(threshold),
		StockValue:  p.StockValue(),
		StockCost:   decimal.Zero,
		MinPrice:    money.Format(lo),
		MaxPrice:    money.Format(hi),
		StockLevels: make([]string, len(p.Variants)),
	}
	for i, v := range p.Variants {
		view.StockLevels[i] = product.Classify(v, threshold).String()
		view.StockCost = view.StockCost.Add(v.CostValue())
		if v.IsOutOfStock() {
			view.SoldOutVariants++
		}
	}
	for range p.LowStockVariants(threshold) {
		view.LowStockVariants++
	}
	return view
}

func (h *Handler) productViews(products []product.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = newProductView(p, h.Products.Threshold())
	}
	return out
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	products, err := h.Products.ListProducts(r.Context(), product.Filter{
		OwnerID:  ownerID,
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, h.productViews(products))
}

func (h *Handler) lowStockProducts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	products, err := h.Products.LowStockProducts(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, h.productViews(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	p, err := h.Products.GetProduct(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, newProductView(*p, h.Products.Threshold()))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var in product.Product
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.OwnerID = ownerID

	created, err := h.Products.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, newProductView(*created, h.Products.Threshold()))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.Products.DeleteProduct(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		utils.WriteJSONError(w, "variant index must be an integer", http.StatusBadRequest)
		return
	}

	var req stockRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.Products.AdjustVariantStock(r.Context(), ownerID, r.PathValue("id"), index, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, newProductView(*updated, h.Products.Threshold()))
}
