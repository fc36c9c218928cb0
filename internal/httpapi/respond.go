package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"net/http"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleError maps service errors to HTTP statuses.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  verr.Error(),
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, cart.ErrSizeRequired):
		respondError(w, http.StatusBadRequest, "size_required", "please select a size")
	case errors.Is(err, cart.ErrInvalidSize):
		respondError(w, http.StatusBadRequest, "invalid_size", "size is not offered for this product")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is out of range")
	case errors.Is(err, port.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, port.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", "cart item not found")
	case errors.Is(err, port.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
	case errors.Is(err, catalog.ErrUnavailable),
		errors.Is(err, checkout.ErrOrderCreate),
		errors.Is(err, context.DeadlineExceeded):
		s.Logger.Warn("retryable failure", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "unavailable", "temporarily unavailable, please retry")
	default:
		s.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
