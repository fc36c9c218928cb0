package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"time"
)

const EventOrderPlaced = "order.placed"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// KafkaPublisher emits an order.placed event keyed by order ID, so events of one order stay ordered.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

var _ port.OrderNotifier = (*KafkaPublisher)(nil)

type OrderPlacedEvent struct {
	OrderID       uuid.UUID        `json:"order_id"`
	ShortID       string           `json:"short_id"`
	Status        string           `json:"status"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	CustomerPhone string           `json:"customer_phone"`
	City          string           `json:"city"`
	Country       string           `json:"country"`
	Items         []OrderEventItem `json:"items"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Discount      decimal.Decimal  `json:"discount"`
	ShippingCost  decimal.Decimal  `json:"shipping_cost"`
	Total         decimal.Decimal  `json:"total"`
	Currency      string           `json:"currency"`
	PlacedAt      time.Time        `json:"placed_at"`
}

type OrderEventItem struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Size            string          `json:"size,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

func (p *KafkaPublisher) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

func NewOrderPlacedEvent(order domain.Order) OrderPlacedEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderEventItem{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Size:            item.Size,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}

	return OrderPlacedEvent{
		OrderID:       order.ID,
		ShortID:       order.ShortID(),
		Status:        order.Status.String(),
		CustomerName:  order.Customer.Name,
		CustomerEmail: order.Customer.Email,
		CustomerPhone: order.Customer.Phone,
		City:          order.ShippingAddress.City,
		Country:       order.ShippingAddress.Country,
		Items:         items,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		ShippingCost:  order.ShippingCost,
		Total:         order.Total,
		Currency:      order.Currency.String(),
		PlacedAt:      order.CreatedAt,
	}
}
