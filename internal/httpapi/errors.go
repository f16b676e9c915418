package httpapi

import (
	"errors"
	"net/http"

	"shopdesk-be/internal/cart"
	"shopdesk-be/internal/category"
	"shopdesk-be/internal/expense"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/order"
	"shopdesk-be/internal/product"
	"shopdesk-be/internal/utils"

	"go.uber.org/zap"
)

var (
	badRequest = []error{
		order.ErrValidation,
		order.ErrNothingToEdit,
		product.ErrNoVariants,
		product.ErrInvalidProductName,
		product.ErrInvalidVariantPrice,
		product.ErrInvalidVariantStock,
		product.ErrVariantOutOfRange,
		expense.ErrInvalidTitle,
		expense.ErrInvalidAmount,
		expense.ErrInvalidCategory,
		expense.ErrInvalidDate,
		category.ErrInvalidName,
		category.ErrMissingOwner,
		cart.ErrInvalidSessionID,
		cart.ErrInvalidOwnerID,
		order.ErrCartOwnerMismatch,
	}
	notFound = []error{
		product.ErrProductNotFound,
		order.ErrOrderNotFound,
		expense.ErrExpenseNotFound,
		category.ErrCategoryNotFound,
	}
	conflict = []error{
		product.ErrInsufficientStock,
		cart.ErrProductUnavailable,
		category.ErrCategoryExists,
	}
)

func matchAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var nse *product.NegativeStockError
	if errors.As(err, &nse) {
		utils.WriteJSON(w, http.StatusConflict, map[string]any{
			"error":        err.Error(),
			"productId":    nse.ProductID,
			"variantIndex": nse.VariantIndex,
			"available":    nse.Current,
		})
		return
	}

	switch {
	case matchAny(err, badRequest):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case matchAny(err, notFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case matchAny(err, conflict):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "http"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
