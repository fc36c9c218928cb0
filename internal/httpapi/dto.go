package httpapi

import (
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"time"
)

type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        string    `json:"price"`
	Currency     string    `json:"currency"`
	Category     string    `json:"category"`
	Sizes        []string  `json:"sizes,omitempty"`
	DefaultSize  string    `json:"default_size,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	ImageGallery []string  `json:"image_gallery,omitempty"`
}

type CartItemDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
	ImageURL  string    `json:"image_url,omitempty"`
}

type SummaryDTO struct {
	Subtotal      string `json:"subtotal"`
	Discount      string `json:"discount"`
	DiscountLabel string `json:"discount_label,omitempty"`
	ShippingCost  string `json:"shipping_cost"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
}

type CartDTO struct {
	Items     []CartItemDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Summary   SummaryDTO    `json:"summary"`
}

type CheckoutDTO struct {
	Phase string        `json:"phase"`
	Cart  CartDTO       `json:"cart"`
	Form  checkout.Form `json:"form"`
}

type OrderItemDTO struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Size            string    `json:"size,omitempty"`
	Quantity        int       `json:"quantity"`
	PriceAtPurchase string    `json:"price_at_purchase"`
	LineTotal       string    `json:"line_total"`
}

type OrderDTO struct {
	ID              uuid.UUID      `json:"id"`
	Number          string         `json:"number"`
	Status          string         `json:"status"`
	Customer        CustomerDTO    `json:"customer"`
	ShippingAddress AddressDTO     `json:"shipping_address"`
	Items           []OrderItemDTO `json:"items"`
	Subtotal        string         `json:"subtotal"`
	Discount        string         `json:"discount"`
	ShippingCost    string         `json:"shipping_cost"`
	Total           string         `json:"total"`
	Currency        string         `json:"currency"`
	CreatedAt       time.Time      `json:"created_at"`
}

type CustomerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AddressDTO struct {
	City     string `json:"city"`
	Street   string `json:"street"`
	Building string `json:"building"`
	Floor    string `json:"floor,omitempty"`
	ZipCode  string `json:"zip_code,omitempty"`
	Country  string `json:"country"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        amount(p.Price.Amount),
		Currency:     p.Price.Currency.String(),
		Category:     p.Category.String(),
		Sizes:        p.Sizes,
		DefaultSize:  p.DefaultSize(),
		ImageURL:     p.ImageURL,
		ImageGallery: p.Images(),
	}
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	result := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		result = append(result, toProductDTO(p))
	}
	return result
}

// toCartItemDTO prices the line from the quote, or from the stored price when
// the quote does not cover it.
func toCartItemDTO(item domain.CartItem, quote pricing.Quote) CartItemDTO {
	line, ok := quote.Line(item.ID)
	if !ok {
		line = pricing.LineQuote{
			ItemID:    item.ID,
			UnitPrice: item.Price.Amount,
			LineTotal: item.Price.Amount.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
	}

	return CartItemDTO{
		ID:        item.ID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Size:      item.Size,
		Quantity:  item.Quantity,
		UnitPrice: amount(line.UnitPrice),
		LineTotal: amount(line.LineTotal),
		ImageURL:  item.ImageURL,
	}
}

func toCartDTO(c domain.Cart, quote pricing.Quote) CartDTO {
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, toCartItemDTO(item, quote))
	}

	return CartDTO{
		Items:     items,
		ItemCount: c.ItemCount(),
		Summary:   toSummaryDTO(quote),
	}
}

func toSummaryDTO(q pricing.Quote) SummaryDTO {
	return SummaryDTO{
		Subtotal:      amount(q.Subtotal),
		Discount:      amount(q.Discount),
		DiscountLabel: q.DiscountLabel(),
		ShippingCost:  amount(q.ShippingCost),
		Total:         amount(q.Total),
		Currency:      q.Currency.String(),
	}
}

func toOrderDTO(o domain.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Size:            item.Size,
			Quantity:        item.Quantity,
			PriceAtPurchase: amount(item.PriceAtPurchase),
			LineTotal:       amount(item.LineTotal()),
		})
	}

	return OrderDTO{
		ID:              o.ID,
		Number:          o.ShortID(),
		Status:          o.Status.String(),
		Customer: CustomerDTO{
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		},
		ShippingAddress: AddressDTO{
			City:     o.ShippingAddress.City,
			Street:   o.ShippingAddress.Street,
			Building: o.ShippingAddress.Building,
			Floor:    o.ShippingAddress.Floor,
			ZipCode:  o.ShippingAddress.ZipCode,
			Country:  o.ShippingAddress.Country,
		},
		Items:           items,
		Subtotal:        amount(o.Subtotal),
		Discount:        amount(o.Discount),
		ShippingCost:    amount(o.ShippingCost),
		Total:           amount(o.Total),
		Currency:        o.Currency.String(),
		CreatedAt:       o.CreatedAt,
	}
}
