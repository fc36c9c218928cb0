package httpapi

import (
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/pricing"
	"go.uber.org/zap"
	"net/http"
	"time"
)

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products, err := s.Catalog.Browse(r.Context(), catalog.Query{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(products))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	product, err := s.Catalog.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTO(product))
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, quote, err := s.Carts.Quote(ctx, sessionFrom(ctx))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(c, quote))
}

func (s *Server) cartCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.Carts.Count(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.Carts.Clear(r.Context(), sessionFrom(r.Context())); err != nil {
		s.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 0 || req.Quantity > cart.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must be between 1 and %d", cart.MaxQuantity))
		return
	}

	ctx := r.Context()

	item, err := s.Carts.AddToCart(ctx, sessionFrom(ctx), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartItemDTO(item, pricing.Quote{}))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if *req.Quantity > cart.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must be at most %d", cart.MaxQuantity))
		return
	}

	if err := s.Carts.UpdateQuantity(r.Context(), sessionFrom(r.Context()), id, *req.Quantity); err != nil {
		s.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.Carts.RemoveItem(r.Context(), sessionFrom(r.Context()), id); err != nil {
		s.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) mergeCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to merge the guest cart")
		return
	}

	merged, err := s.Carts.MergeGuestCart(r.Context(), sess)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"merged": merged})
}

// cartEvents streams a cart-changed event whenever the caller's cart is mutated.
func (s *Server) cartEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	ownerID := sessionFrom(r.Context()).OwnerID()
	signals, cancel := s.Changes.Subscribe(ownerID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	var heartbeat <-chan time.Time
	if s.Heartbeat > 0 {
		ticker := time.NewTicker(s.Heartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-signals:
			if !open {
				return
			}
			if _, err := fmt.Fprint(w, "event: cart-changed\ndata: {}\n\n"); err != nil {
				s.Logger.Debug("event stream closed", zap.String("owner_id", ownerID), zap.Error(err))
				return
			}
			flusher.Flush()
		case <-heartbeat:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) loadCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draft, err := s.Checkout.Load(ctx, sessionFrom(ctx))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutDTO{
		Phase: draft.Phase.String(),
		Cart:  toCartDTO(draft.Cart, draft.Quote),
		Form:  draft.Form,
	})
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if !decodeJSON(w, r, &form) {
		return
	}

	order, err := s.Checkout.PlaceOrder(r.Context(), sessionFrom(r.Context()), form)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/orders/"+order.ID.String())
	respondJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := s.Checkout.GetOrder(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", fmt.Sprintf("%s is not a valid UUID", name))
		return uuid.Nil, false
	}
	return id, true
}
