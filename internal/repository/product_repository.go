package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{
		q: db.New(pool),
	}
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := mapProductToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapProductToDomain: %w", err)
		}
		products = append(products, p)
	}

	return products, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, port.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	p, err := mapProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Name == "" {
		return domain.Product{}, fmt.Errorf("name is empty")
	}
	if product.Price.Amount.IsNegative() {
		return domain.Product{}, fmt.Errorf("price[%s] is negative", product.Price.Amount)
	}

	row, err := r.q.CreateProduct(ctx, db.CreateProductParams{
		Name:          product.Name,
		Description:   product.Description,
		PriceAmount:   product.Price.Amount,
		PriceCurrency: product.Price.Currency.String(),
		Category:      product.Category.String(),
		Sizes:         nonNil(product.Sizes),
		ImageUrl:      product.ImageURL,
		ImageGallery:  nonNil(product.ImageGallery),
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.CreateProduct: %w", err)
	}

	created, err := mapProductToDomain(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductToDomain: %w", err)
	}

	return created, nil
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		Price:        price,
		Category:     domain.Category(row.Category),
		Sizes:        row.Sizes,
		ImageURL:     row.ImageUrl,
		ImageGallery: row.ImageGallery,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// text[] columns are NOT NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
