package checkout

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"go.uber.org/zap"
	"time"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderCreate means the order was not persisted and the cart is untouched. It is retryable.
	ErrOrderCreate = errors.New("order could not be created")
)

const unknownProductName = "Unknown Product"

type Carts interface {
	GetCart(ctx context.Context, sess domain.Session) (domain.Cart, error)
	// RemoveOrdered takes the ordered quantities out of the cart and keeps anything added since.
	RemoveOrdered(ctx context.Context, sess domain.Session, ordered []domain.CartItem) error
}

type Catalog interface {
	Snapshot(ctx context.Context) (domain.Catalog, error)
}

type Config struct {
	Rules          pricing.Rules
	DefaultCountry string
	// NotifyTimeout bounds the seller notification. Zero means no bound.
	NotifyTimeout time.Duration
}

// Draft is everything the checkout page shows before submission.
type Draft struct {
	Phase Phase
	Cart  domain.Cart
	Quote pricing.Quote
	Form  Form
}

type Service struct {
	carts    Carts
	catalog  Catalog
	orders   port.OrderRepository
	notifier port.OrderNotifier
	cfg      Config
	logger   *zap.Logger
}

func NewService(carts Carts, catalog Catalog, orders port.OrderRepository, notifier port.OrderNotifier, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		carts:    carts,
		catalog:  catalog,
		orders:   orders,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Load prices the active cart and prefills the form from the signed-in identity.
func (s *Service) Load(ctx context.Context, sess domain.Session) (Draft, error) {
	cart, snapshot, err := s.loadCart(ctx, sess)
	if err != nil {
		return Draft{}, err
	}

	form := Form{Country: s.cfg.DefaultCountry}
	if sess.Authenticated() {
		form.Name = sess.Identity.FullName
		form.Email = sess.Identity.Email
	}

	return Draft{
		Phase: PhaseDraft,
		Cart:  cart,
		Quote: s.cfg.Rules.Quote(cart.Items, snapshot.Lookup),
		Form:  form,
	}, nil
}

// PlaceOrder moves a checkout from draft to placed: it freezes the cart into an
// order, persists it, notifies the seller and removes the ordered lines from the
// cart. Notification and line removal are best effort once the order is stored.
func (s *Service) PlaceOrder(ctx context.Context, sess domain.Session, form Form) (domain.Order, error) {
	form = form.Normalize(s.cfg.DefaultCountry)
	if sess.Authenticated() {
		form.Email = sess.Identity.Email
	}
	if err := form.Validate(); err != nil {
		return domain.Order{}, err
	}

	cart, snapshot, err := s.loadCart(ctx, sess)
	if err != nil {
		return domain.Order{}, err
	}

	order := s.snapshotOrder(cart, snapshot, form)
	order.OwnerID = sess.OwnerID()

	order, err = s.orders.CreateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: orders.CreateOrder: %w", ErrOrderCreate, err)
	}

	logger := s.logger.With(zap.Stringer("order_id", order.ID), zap.String("owner_id", sess.OwnerID()))
	logger.Info("order placed",
		zap.Int("lines", len(order.Items)),
		zap.Stringer("total", order.Total))

	// the order is stored: a client disconnect must not cut the follow-ups short
	s.notify(ctx, logger, order)

	if err := s.carts.RemoveOrdered(context.WithoutCancel(ctx), sess, cart.Items); err != nil {
		logger.Error("ordered lines removal failed", zap.Error(err))
	}

	return order, nil
}

// GetOrder returns an order to the session that placed it. Other sessions get
// port.ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, sess domain.Session, id uuid.UUID) (domain.Order, error) {
	if id == uuid.Nil {
		return domain.Order{}, fmt.Errorf("orderID is empty")
	}

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if !order.PlacedBy(sess) {
		return domain.Order{}, port.ErrOrderNotFound
	}

	return order, nil
}

func (s *Service) loadCart(ctx context.Context, sess domain.Session) (domain.Cart, domain.Catalog, error) {
	cart, err := s.carts.GetCart(ctx, sess)
	if err != nil {
		return domain.Cart{}, domain.Catalog{}, fmt.Errorf("carts.GetCart: %w", err)
	}
	if cart.IsEmpty() {
		return domain.Cart{}, domain.Catalog{}, ErrEmptyCart
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.Cart{}, domain.Catalog{}, fmt.Errorf("catalog.Snapshot: %w", err)
	}

	return cart, snapshot, nil
}

// snapshotOrder prices lines with the same unit prices the totals use.
func (s *Service) snapshotOrder(cart domain.Cart, snapshot domain.Catalog, form Form) domain.Order {
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		name := item.Name
		if name == "" {
			if p, ok := snapshot.Lookup(item.ProductID); ok {
				name = p.Name
			}
		}
		if name == "" {
			name = unknownProductName
		}

		items = append(items, domain.OrderItem{
			ProductID:       item.ProductID,
			ProductName:     name,
			Quantity:        item.Quantity,
			PriceAtPurchase: pricing.UnitPrice(item, snapshot.Lookup),
			Size:            item.Size,
		})
	}

	quote := s.cfg.Rules.Quote(cart.Items, snapshot.Lookup)

	return domain.Order{
		Customer:        form.customer(),
		ShippingAddress: form.address(),
		Items:           items,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		ShippingCost:    quote.ShippingCost,
		Total:           quote.Total,
		Currency:        quote.Currency,
		Status:          domain.OrderStatusPending,
	}
}

func (s *Service) notify(ctx context.Context, logger *zap.Logger, order domain.Order) {
	if s.notifier == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if s.cfg.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.NotifyTimeout)
		defer cancel()
	}

	if err := s.notifier.NotifyOrderPlaced(ctx, order); err != nil {
		logger.Warn("seller notification failed", zap.Error(err))
	}
}
