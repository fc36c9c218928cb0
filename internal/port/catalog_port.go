package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
}
