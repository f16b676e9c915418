package httpapi

import (
	"net/http"
	"net/url"

	"shopdesk-be/internal/expense"
	"shopdesk-be/internal/utils"

	"github.com/shopspring/decimal"
)

// expenseFilter reads category, from and to from the query string.
func expenseFilter(q url.Values) (expense.Filter, error) {
	from, err := utils.ParseDatePtr(q.Get("from"), false)
	if err != nil {
		return expense.Filter{}, err
	}
	to, err := utils.ParseDatePtr(q.Get("to"), true)
	if err != nil {
		return expense.Filter{}, err
	}
	return expense.Filter{Category: q.Get("category"), From: from, To: to}, nil
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	filter, err := expenseFilter(r.URL.Query())
	if err != nil {
		utils.WriteJSONError(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	expenses, err := h.Expenses.List(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, expenses)
}

type expenseRequest struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := utils.ParseDatePtr(req.Date, false)
	if err != nil {
		utils.WriteJSONError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	in := expense.Expense{
		OwnerID:  ownerID,
		Title:    req.Title,
		Amount:   req.Amount,
		Category: expense.Category(req.Category),
		Notes:    req.Notes,
	}
	if date != nil {
		in.Date = *date
	}

	created, err := h.Expenses.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.Expenses.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	filter, err := expenseFilter(r.URL.Query())
	if err != nil {
		utils.WriteJSONError(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	s, err := h.Reports.Dashboard(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}
