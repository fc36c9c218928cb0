package repository

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"math"
	"time"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

// NewCart returns the cart store of signed-in users.
func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		item, err := mapCartRowToDomain(cartRow(row))
		if err != nil {
			return domain.Cart{}, fmt.Errorf("mapCartRowToDomain: %w", err)
		}
		items = append(items, item)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *cartRepository) FindItems(ctx context.Context, ownerID string, productID uuid.UUID, size *string) ([]domain.CartItem, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.FindItems(ctx, db.FindItemsParams{
		OwnerID:   ownerID,
		ProductID: productID,
		Size:      size,
	})
	if err != nil {
		return nil, fmt.Errorf("q.FindItems: %w", err)
	}

	var items []domain.CartItem
	for _, row := range rows {
		item, err := mapCartRowToDomain(cartRow(row))
		if err != nil {
			return nil, fmt.Errorf("mapCartRowToDomain: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *cartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.CartItem, error) {
	if err := validateNewItem(ownerID, item); err != nil {
		return domain.CartItem{}, err
	}

	return addItem(ctx, r.q, ownerID, item)
}

func (r *cartRepository) AddItems(ctx context.Context, ownerID string, items []domain.CartItem) ([]domain.CartItem, error) {
	for _, item := range items {
		if err := validateNewItem(ownerID, item); err != nil {
			return nil, err
		}
	}

	return withTx(ctx, r.pool, func(q *db.Queries) ([]domain.CartItem, error) {
		added := make([]domain.CartItem, 0, len(items))
		for _, item := range items {
			a, err := addItem(ctx, q, ownerID, item)
			if err != nil {
				return nil, err
			}
			added = append(added, a)
		}
		return added, nil
	})
}

func addItem(ctx context.Context, q *db.Queries, ownerID string, item domain.CartItem) (domain.CartItem, error) {
	row, err := q.AddItem(ctx, db.AddItemParams{
		OwnerID:       ownerID,
		ProductID:     item.ProductID,
		Size:          item.Size,
		Quantity:      int32(item.Quantity),
		Name:          item.Name,
		PriceAmount:   item.Price.Amount,
		PriceCurrency: item.Price.Currency.String(),
		ImageUrl:      item.ImageURL,
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("q.AddItem: %w", err)
	}

	added, err := mapCartRowToDomain(cartRow(row))
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("mapCartRowToDomain: %w", err)
	}

	return added, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, ownerID string, itemID uuid.UUID, quantity int) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	if quantity <= 0 {
		return r.DeleteItem(ctx, ownerID, itemID)
	}
	if err := validateQuantity(quantity); err != nil {
		return false, err
	}

	rowsAffected, err := r.q.UpdateItemQuantity(ctx, db.UpdateItemQuantityParams{
		OwnerID:  ownerID,
		ID:       itemID,
		Quantity: int32(quantity),
	})
	if err != nil {
		return false, fmt.Errorf("q.UpdateItemQuantity: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID string, itemID uuid.UUID) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	rowsAffected, err := r.q.DeleteItem(ctx, db.DeleteItemParams{
		OwnerID: ownerID,
		ID:      itemID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.q.ClearCart(ctx, ownerID); err != nil {
		return fmt.Errorf("q.ClearCart: %w", err)
	}

	return nil
}

func validateNewItem(ownerID string, item domain.CartItem) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if item.ProductID == uuid.Nil {
		return fmt.Errorf("productID is empty")
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("quantity[%d] is not positive", item.Quantity)
	}
	return validateQuantity(item.Quantity)
}

// validateQuantity rejects quantities the int32 quantity column cannot hold.
func validateQuantity(quantity int) error {
	if quantity > math.MaxInt32 {
		return fmt.Errorf("quantity[%d] is out of range", quantity)
	}
	return nil
}

// cartRow is the column set shared by every cart_items query.
type cartRow struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Size          string
	Quantity      int32
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	ImageUrl      string
	CreatedAt     time.Time
}

func mapCartRowToDomain(row cartRow) (domain.CartItem, error) {
	price, err := mapMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		ID:        row.ID,
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Size:      row.Size,
		Name:      row.Name,
		Price:     price,
		ImageURL:  row.ImageUrl,
		CreatedAt: row.CreatedAt,
	}, nil
}
