package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"os"
)

type seedProduct struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Category     string          `json:"category"`
	Sizes        []string        `json:"sizes"`
	ImageURL     string          `json:"image_url"`
	ImageGallery []string        `json:"image_gallery"`
}

// seedProducts inserts the products of path unless the catalog already has products.
func seedProducts(ctx context.Context, repo port.ProductRepository, path string, logger *zap.Logger) error {
	existing, err := repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("repo.ListProducts: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("catalog already seeded", zap.Int("products", len(existing)))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("os.ReadFile: %w", err)
	}

	products, err := parseSeed(data)
	if err != nil {
		return err
	}

	for _, p := range products {
		if _, err := repo.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("repo.CreateProduct[%s]: %w", p.Name, err)
		}
	}

	logger.Info("catalog seeded", zap.Int("products", len(products)))

	return nil
}

func parseSeed(data []byte) ([]domain.Product, error) {
	var raw []seedProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	products := make([]domain.Product, 0, len(raw))
	for i, r := range raw {
		code := r.Currency
		if code == "" {
			code = "USD"
		}
		cur, err := currency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("product[%d] currency[%s] is not valid: %w", i, code, err)
		}

		category := domain.Category(r.Category)
		if !category.IsKnown() {
			return nil, fmt.Errorf("product[%d] category[%s] is not known", i, r.Category)
		}

		products = append(products, domain.Product{
			Name:         r.Name,
			Description:  r.Description,
			Price:        domain.NewMoney(r.Price, cur),
			Category:     category,
			Sizes:        r.Sizes,
			ImageURL:     r.ImageURL,
			ImageGallery: r.ImageGallery,
		})
	}

	return products, nil
}
