package cart

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

// MaxQuantity is the largest quantity one request may add or set on a line.
const MaxQuantity = 99

var (
	ErrSizeRequired    = errors.New("size is required")
	ErrInvalidSize     = errors.New("size is not offered for this product")
	ErrInvalidQuantity = errors.New("quantity is out of range")
)

// Catalog is the product source the cart prices against.
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	Snapshot(ctx context.Context) (domain.Catalog, error)
}

// Publisher receives a signal after every successful cart mutation.
type Publisher interface {
	Publish(ownerID string)
}

type Config struct {
	Rules pricing.Rules
	// RequestTimeout bounds every call to a cart store. Zero means no bound.
	RequestTimeout time.Duration
}

// Service routes cart operations to the remote store for signed-in sessions
// and to the guest store otherwise. Mutations of one owner never interleave.
type Service struct {
	remote  port.CartRepository
	guest   port.CartRepository
	catalog Catalog
	changes Publisher
	cfg     Config
	logger  *zap.Logger

	locks *keyedMutex
}

func NewService(remote, guest port.CartRepository, catalog Catalog, changes Publisher, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		remote:  remote,
		guest:   guest,
		catalog: catalog,
		changes: changes,
		cfg:     cfg,
		logger:  logger,
		locks:   newKeyedMutex(),
	}
}

// Open returns the store active for sess and the owner key within it.
func (s *Service) Open(sess domain.Session) (port.CartRepository, string, error) {
	if sess.Authenticated() {
		return s.remote, sess.Identity.Email, nil
	}
	if sess.GuestID == "" {
		return nil, "", fmt.Errorf("ownerID is empty")
	}
	return s.guest, sess.GuestID, nil
}

func (s *Service) GetCart(ctx context.Context, sess domain.Session) (domain.Cart, error) {
	repo, ownerID, err := s.Open(sess)
	if err != nil {
		return domain.Cart{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cart, err := repo.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.GetCart: %w", err)
	}

	return cart, nil
}

// Count is the total quantity shown on the cart badge.
func (s *Service) Count(ctx context.Context, sess domain.Session) (int, error) {
	cart, err := s.GetCart(ctx, sess)
	if err != nil {
		return 0, err
	}

	return cart.ItemCount(), nil
}

// AddToCart adds quantity units of a product, merging into the line with the same size.
// A non-positive quantity adds one unit. Size is ignored for products without sizes.
func (s *Service) AddToCart(ctx context.Context, sess domain.Session, productID uuid.UUID, size string, quantity int) (domain.CartItem, error) {
	repo, ownerID, err := s.Open(sess)
	if err != nil {
		return domain.CartItem{}, err
	}
	if quantity <= 0 {
		quantity = 1
	}
	if quantity > MaxQuantity {
		return domain.CartItem{}, fmt.Errorf("quantity[%d]: %w", quantity, ErrInvalidQuantity)
	}

	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("catalog.Get: %w", err)
	}

	switch {
	case !product.RequiresSize():
		size = ""
	case size == "":
		return domain.CartItem{}, ErrSizeRequired
	case !product.HasSize(size):
		return domain.CartItem{}, fmt.Errorf("size[%s]: %w", size, ErrInvalidSize)
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	item, err := repo.AddItem(ctx, ownerID, domain.CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Size:      size,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("repo.AddItem: %w", err)
	}

	s.logger.Debug("cart item added",
		zap.String("owner_id", ownerID),
		zap.Stringer("product_id", product.ID),
		zap.String("size", size),
		zap.Int("quantity", item.Quantity))

	s.changes.Publish(ownerID)

	return item, nil
}

// UpdateQuantity sets the quantity of a line. Zero or below removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sess domain.Session, itemID uuid.UUID, quantity int) error {
	if quantity > MaxQuantity {
		return fmt.Errorf("quantity[%d]: %w", quantity, ErrInvalidQuantity)
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, sess, itemID)
	}

	repo, ownerID, err := s.Open(sess)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := repo.UpdateQuantity(ctx, ownerID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("repo.UpdateQuantity: %w", err)
	}
	if !updated {
		return port.ErrItemNotFound
	}

	s.changes.Publish(ownerID)

	return nil
}

// RemoveItem deletes a line. Removing a missing line is not an error.
func (s *Service) RemoveItem(ctx context.Context, sess domain.Session, itemID uuid.UUID) error {
	repo, ownerID, err := s.Open(sess)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	deleted, err := repo.DeleteItem(ctx, ownerID, itemID)
	if err != nil {
		return fmt.Errorf("repo.DeleteItem: %w", err)
	}

	if deleted {
		s.changes.Publish(ownerID)
	}

	return nil
}

func (s *Service) Clear(ctx context.Context, sess domain.Session) error {
	repo, ownerID, err := s.Open(sess)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := repo.Clear(ctx, ownerID); err != nil {
		return fmt.Errorf("repo.Clear: %w", err)
	}

	s.changes.Publish(ownerID)

	return nil
}

// RemoveOrdered takes the quantities of ordered lines out of the cart. Units
// added to a line after the order snapshot stay, and so do lines the order
// does not contain.
func (s *Service) RemoveOrdered(ctx context.Context, sess domain.Session, ordered []domain.CartItem) error {
	repo, ownerID, err := s.Open(sess)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var changed bool
	defer func() {
		if changed {
			s.changes.Publish(ownerID)
		}
	}()

	for _, o := range ordered {
		size := o.Size
		current, err := repo.FindItems(ctx, ownerID, o.ProductID, &size)
		if err != nil {
			return fmt.Errorf("repo.FindItems: %w", err)
		}

		for _, item := range current {
			// quantity <= 0 deletes the line
			updated, err := repo.UpdateQuantity(ctx, ownerID, item.ID, item.Quantity-o.Quantity)
			if err != nil {
				return fmt.Errorf("repo.UpdateQuantity: %w", err)
			}
			changed = changed || updated
		}
	}

	return nil
}

// Quote prices the active cart against the current catalog.
func (s *Service) Quote(ctx context.Context, sess domain.Session) (domain.Cart, pricing.Quote, error) {
	cart, err := s.GetCart(ctx, sess)
	if err != nil {
		return domain.Cart{}, pricing.Quote{}, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.Cart{}, pricing.Quote{}, fmt.Errorf("catalog.Snapshot: %w", err)
	}

	return cart, s.cfg.Rules.Quote(cart.Items, snapshot.Lookup), nil
}

// MergeGuestCart moves the lines of the session's guest cart into the signed-in
// user's cart, summing quantities of matching lines, and empties the guest cart.
// It returns the number of lines merged.
func (s *Service) MergeGuestCart(ctx context.Context, sess domain.Session) (int, error) {
	if !sess.Authenticated() || sess.GuestID == "" {
		return 0, nil
	}
	ownerID := sess.Identity.Email

	unlockGuest := s.locks.Lock(sess.GuestID)
	defer unlockGuest()
	unlockOwner := s.locks.Lock(ownerID)
	defer unlockOwner()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	guestCart, err := s.guest.GetCart(ctx, sess.GuestID)
	if err != nil {
		return 0, fmt.Errorf("guest.GetCart: %w", err)
	}
	if guestCart.IsEmpty() {
		return 0, nil
	}

	if _, err := s.remote.AddItems(ctx, ownerID, guestCart.Items); err != nil {
		return 0, fmt.Errorf("remote.AddItems: %w", err)
	}

	// the remote cart is committed; failing here would invite a retry that adds the guest lines twice
	if err := s.guest.Clear(ctx, sess.GuestID); err != nil {
		s.logger.Error("guest cart clear after merge failed",
			zap.String("owner_id", ownerID),
			zap.String("guest_id", sess.GuestID),
			zap.Error(err))
	}

	s.logger.Info("guest cart merged",
		zap.String("owner_id", ownerID),
		zap.String("guest_id", sess.GuestID),
		zap.Int("lines", len(guestCart.Items)))

	s.changes.Publish(sess.GuestID)
	s.changes.Publish(ownerID)

	return len(guestCart.Items), nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}
