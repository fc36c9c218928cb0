package httpapi

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type Catalog interface {
	Browse(ctx context.Context, q catalog.Query) ([]domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
}

type Carts interface {
	GetCart(ctx context.Context, sess domain.Session) (domain.Cart, error)
	Count(ctx context.Context, sess domain.Session) (int, error)
	AddToCart(ctx context.Context, sess domain.Session, productID uuid.UUID, size string, quantity int) (domain.CartItem, error)
	UpdateQuantity(ctx context.Context, sess domain.Session, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, sess domain.Session, itemID uuid.UUID) error
	Clear(ctx context.Context, sess domain.Session) error
	Quote(ctx context.Context, sess domain.Session) (domain.Cart, pricing.Quote, error)
	MergeGuestCart(ctx context.Context, sess domain.Session) (int, error)
}

type Checkout interface {
	Load(ctx context.Context, sess domain.Session) (checkout.Draft, error)
	PlaceOrder(ctx context.Context, sess domain.Session, form checkout.Form) (domain.Order, error)
	GetOrder(ctx context.Context, sess domain.Session, id uuid.UUID) (domain.Order, error)
}

type Changes interface {
	Subscribe(ownerID string) (<-chan struct{}, func())
}

type Deps struct {
	Catalog  Catalog
	Carts    Carts
	Checkout Checkout
	Changes  Changes
	Probe    port.SessionProbe
	Logger   *zap.Logger

	// GuestCookieTTL is the lifetime of the guest_id cookie; it should match the guest cart TTL.
	GuestCookieTTL time.Duration
	SecureCookies  bool
	// Heartbeat keeps idle event streams open through proxies. Zero disables it.
	Heartbeat time.Duration
}

type Server struct {
	Deps
}

func NewRouter(deps Deps) http.Handler {
	s := &Server{Deps: deps}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.session)

		r.Get("/products", s.listProducts)
		r.Get("/products/{id}", s.getProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.getCart)
			r.Delete("/", s.clearCart)
			r.Get("/count", s.cartCount)
			r.Get("/events", s.cartEvents)
			r.Post("/merge", s.mergeCart)
			r.Post("/items", s.addItem)
			r.Patch("/items/{id}", s.updateItem)
			r.Delete("/items/{id}", s.removeItem)
		})

		r.Get("/checkout", s.loadCheckout)
		r.Post("/checkout", s.placeOrder)
		r.Get("/orders/{id}", s.getOrder)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			s.Logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()

		next.ServeHTTP(ww, r)
	})
}
