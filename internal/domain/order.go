package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type ShippingAddress struct {
	City     string
	Street   string
	Building string
	Floor    string
	ZipCode  string
	Country  string
}

// OrderItem is frozen at submission; PriceAtPurchase is never re-derived from the catalog.
type OrderItem struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	PriceAtPurchase decimal.Decimal
	Size            string
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID      uuid.UUID
	OwnerID string // guest ID or user email of the placing session

	Customer        Customer
	ShippingAddress ShippingAddress
	Items           []OrderItem

	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	Currency     currency.Unit

	Status    OrderStatus
	CreatedAt time.Time
}

// PlacedBy reports whether sess placed the order, either as the guest it was
// then or as the signed-in user.
func (o Order) PlacedBy(sess Session) bool {
	if o.OwnerID == "" {
		return false
	}
	if o.OwnerID == sess.GuestID {
		return true
	}
	return sess.Authenticated() && o.OwnerID == sess.Identity.Email
}

// ShortID is the human-facing order number.
func (o Order) ShortID() string {
	return o.ID.String()[:8]
}
