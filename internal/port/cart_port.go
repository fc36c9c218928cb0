package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	// FindItems returns lines of the product; a non-nil size narrows to that exact size.
	FindItems(ctx context.Context, ownerID string, productID uuid.UUID, size *string) ([]domain.CartItem, error)
	// AddItem merges item.Quantity into the line with the same (product, size) key or creates it.
	AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.CartItem, error)
	// AddItems merges several lines atomically.
	AddItems(ctx context.Context, ownerID string, items []domain.CartItem) ([]domain.CartItem, error)
	// UpdateQuantity sets the quantity of a line; quantity <= 0 deletes it.
	UpdateQuantity(ctx context.Context, ownerID string, itemID uuid.UUID, quantity int) (bool, error)
	DeleteItem(ctx context.Context, ownerID string, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, ownerID string) error
}
