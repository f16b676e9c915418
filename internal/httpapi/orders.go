package httpapi

import (
	"net/http"

	"shopdesk-be/internal/money"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/utils"
)

// orderResponse adds display totals and the next steps of the normal
// payment and delivery flow, which the admin screens offer first.
type orderResponse struct {
	order.Order
	TotalDisplay         string                 `json:"totalDisplay"`
	NextPaymentStatuses  []order.PaymentStatus  `json:"nextPaymentStatuses"`
	NextDeliveryStatuses []order.DeliveryStatus `json:"nextDeliveryStatuses"`
}

func newOrderResponse(o order.Order) orderResponse {
	return orderResponse{
		Order:                o,
		TotalDisplay:         money.Format(o.Total),
		NextPaymentStatuses:  order.NextPaymentStatuses(o.PaymentStatus),
		NextDeliveryStatuses: order.NextDeliveryStatuses(o.DeliveryStatus),
	}
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req order.CheckoutRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.OwnerID = s.OwnerID()
	if m, ok := order.ParsePaymentMethod(string(req.PaymentMethod)); ok {
		req.PaymentMethod = m
	}

	o, err := h.Orders.Checkout(r.Context(), s, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, newOrderResponse(*o))
}

func (h *Handler) createAdminOrder(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req order.AdminOrderRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.OwnerID = ownerID
	req.CreatedBy = ownerID
	if m, ok := order.ParsePaymentMethod(string(req.PaymentMethod)); ok {
		req.PaymentMethod = m
	}

	o, err := h.Orders.PlaceAdminOrder(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, newOrderResponse(*o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	orders, err := h.Orders.ListOrders(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = newOrderResponse(o)
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	o, err := h.Orders.GetOrder(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newOrderResponse(*o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var u order.StatusUpdate
	if err := utils.DecodeJSON(r, &u); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), ownerID, r.PathValue("id"), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newOrderResponse(*o))
}
