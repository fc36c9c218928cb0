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
	"golang.org/x/text/currency"
	"strings"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if len(order.Items) == 0 {
		return domain.Order{}, fmt.Errorf("order has no items")
	}
	if order.Customer.Email == "" {
		return domain.Order{}, fmt.Errorf("customer email is empty")
	}
	if order.OwnerID == "" {
		return domain.Order{}, fmt.Errorf("ownerID is empty")
	}

	return withTx(ctx, r.pool, func(q *db.Queries) (domain.Order, error) {
		row, err := q.CreateOrder(ctx, db.CreateOrderParams{
			OwnerID:        order.OwnerID,
			CustomerName:   order.Customer.Name,
			CustomerEmail:  order.Customer.Email,
			CustomerPhone:  order.Customer.Phone,
			ShipCity:       order.ShippingAddress.City,
			ShipStreet:     order.ShippingAddress.Street,
			ShipBuilding:   order.ShippingAddress.Building,
			ShipFloor:      order.ShippingAddress.Floor,
			ShipZipCode:    order.ShippingAddress.ZipCode,
			ShipCountry:    order.ShippingAddress.Country,
			SubtotalAmount: order.Subtotal,
			DiscountAmount: order.Discount,
			ShippingAmount: order.ShippingCost,
			TotalAmount:    order.Total,
			Currency:       order.Currency.String(),
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.CreateOrder: %w", err)
		}

		for i, item := range order.Items {
			err := q.CreateOrderItem(ctx, db.CreateOrderItemParams{
				OrderID:         row.ID,
				LineNo:          int32(i + 1),
				ProductID:       item.ProductID,
				ProductName:     item.ProductName,
				Quantity:        int32(item.Quantity),
				PriceAtPurchase: item.PriceAtPurchase,
				Size:            item.Size,
			})
			if err != nil {
				return domain.Order{}, fmt.Errorf("q.CreateOrderItem[%d]: %w", i, err)
			}
		}

		created := order
		created.ID = row.ID
		created.Status = domain.OrderStatus(row.Status)
		created.CreatedAt = row.CreatedAt

		return created, nil
	})
}

func (r *orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	row, err := r.q.GetOrder(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, port.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	itemRows, err := r.q.GetOrderItems(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(strings.TrimSpace(row.Currency))
	if err != nil {
		return domain.Order{}, fmt.Errorf("currency[%s] is not valid: %w", row.Currency, err)
	}

	status := domain.OrderStatus(row.Status)
	if !status.IsValid() {
		return domain.Order{}, fmt.Errorf("status[%s] is not valid", row.Status)
	}

	items := make([]domain.OrderItem, 0, len(itemRows))
	for _, it := range itemRows {
		items = append(items, domain.OrderItem{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        int(it.Quantity),
			PriceAtPurchase: it.PriceAtPurchase,
			Size:            it.Size,
		})
	}

	return domain.Order{
		ID:      row.ID,
		OwnerID: row.OwnerID,
		Customer: domain.Customer{
			Name:  row.CustomerName,
			Email: row.CustomerEmail,
			Phone: row.CustomerPhone,
		},
		ShippingAddress: domain.ShippingAddress{
			City:     row.ShipCity,
			Street:   row.ShipStreet,
			Building: row.ShipBuilding,
			Floor:    row.ShipFloor,
			ZipCode:  row.ShipZipCode,
			Country:  row.ShipCountry,
		},
		Items:        items,
		Subtotal:     row.SubtotalAmount,
		Discount:     row.DiscountAmount,
		ShippingCost: row.ShippingAmount,
		Total:        row.TotalAmount,
		Currency:     parsedCurrency,
		Status:       status,
		CreatedAt:    row.CreatedAt,
	}, nil
}
