package httpapi

import (
	"net/http"

	"shopdesk-be/internal/cart"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/money"
	"shopdesk-be/internal/utils"
)

type cartResponse struct {
	cart.View
	SubtotalDisplay string `json:"subtotalDisplay"`
	TaxDisplay      string `json:"taxDisplay"`
	TaxRateDisplay  string `json:"taxRateDisplay"`
	TotalDisplay    string `json:"totalDisplay"`
}

func newCartResponse(s cart.State) cartResponse {
	v := s.View()
	return cartResponse{
		View:            v,
		SubtotalDisplay: money.Format(v.Subtotal),
		TaxDisplay:      money.Format(v.Tax),
		TaxRateDisplay:  money.Percent(v.TaxRate),
		TotalDisplay:    money.Format(v.Total),
	}
}

// session opens the cart named by the X-Session-ID header in the store
// named by X-Owner-ID.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*cart.Session, bool) {
	ownerID, ok := owner(w, r)
	if !ok {
		return nil, false
	}
	id := logger.SessionIDFrom(r.Context())
	if id == "" {
		utils.WriteJSONError(w, "X-Session-ID header is required", http.StatusBadRequest)
		return nil, false
	}

	s, err := h.Carts.Open(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(s.State()))
}

type addItemRequest struct {
	ProductID    string `json:"productId"`
	VariantIndex int    `json:"variantIndex"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		utils.WriteJSONError(w, "productId is required", http.StatusBadRequest)
		return
	}

	st, err := s.AddProduct(r.Context(), req.ProductID, req.VariantIndex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(st))
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := s.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(st))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	st, err := s.RemoveItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(st))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	st, err := s.Clear(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newCartResponse(st))
}
