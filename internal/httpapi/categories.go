package httpapi

import (
	"net/http"

	"shopdesk-be/internal/category"
	"shopdesk-be/internal/utils"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, err := utils.ParseInt32Ptr(q.Get("limit"))
	if err != nil {
		utils.WriteJSONError(w, "limit must be an integer", http.StatusBadRequest)
		return
	}
	page, err := utils.ParseInt32Ptr(q.Get("page"))
	if err != nil {
		utils.WriteJSONError(w, "page must be an integer", http.StatusBadRequest)
		return
	}

	params := category.ListParams{
		OwnerID:    ownerID,
		ActiveOnly: q.Get("active") == "true",
		Limit:      limit,
		Page:       page,
	}
	if search := q.Get("search"); search != "" {
		params.Search = utils.StrPtr(search)
	}

	categories, err := h.Categories.ListCategories(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.Categories.AddCategory(r.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

type categoryStatusRequest struct {
	Active bool `json:"status"`
}

func (h *Handler) setCategoryActive(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var req categoryStatusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Categories.SetActive(r.Context(), ownerID, r.PathValue("id"), req.Active); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.Categories.DeleteCategory(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
