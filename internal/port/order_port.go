package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	// CreateOrder persists the order and returns it with the assigned ID, status and timestamp.
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
}

type OrderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, order domain.Order) error
}
