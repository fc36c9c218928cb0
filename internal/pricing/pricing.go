// Package pricing computes cart totals. Everything here is a pure function of its
// inputs so it can back both the cart summary and the order snapshot.
package pricing

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"slices"
)

// Lookup resolves a product from the current catalog snapshot.
type Lookup func(id uuid.UUID) (domain.Product, bool)

type Rules struct {
	Currency currency.Unit

	// Every BundleSize units from BundleCategories earn BundleDiscount off.
	BundleCategories []domain.Category
	BundleSize       int
	BundleDiscount   decimal.Decimal

	// ShippingFee applies while the pre-discount subtotal is below FreeShippingThreshold.
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// DefaultRules: four mugs or pouches at 8 each cost 22 instead of 32, shipping is 5 below 50.
func DefaultRules() Rules {
	return Rules{
		Currency:              currency.USD,
		BundleCategories:      []domain.Category{domain.CategoryCups, domain.CategoryMakeupPouches},
		BundleSize:            4,
		BundleDiscount:        decimal.NewFromInt(10),
		ShippingFee:           decimal.NewFromInt(5),
		FreeShippingThreshold: decimal.NewFromInt(50),
	}
}

type Quote struct {
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	Currency     currency.Unit

	Bundles          int
	EligibleQuantity int

	// Lines holds the unit price each cart line was priced at, in cart order.
	Lines []LineQuote
}

type LineQuote struct {
	ItemID    uuid.UUID
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Line returns the pricing of one cart line.
func (q Quote) Line(itemID uuid.UUID) (LineQuote, bool) {
	for _, l := range q.Lines {
		if l.ItemID == itemID {
			return l, true
		}
	}
	return LineQuote{}, false
}

func (q Quote) HasDiscount() bool {
	return q.Discount.IsPositive()
}

func (q Quote) DiscountLabel() string {
	if q.Bundles == 0 {
		return ""
	}
	return fmt.Sprintf("Bundle Deal (%dx)", q.Bundles)
}

// Compute prices items with DefaultRules.
func Compute(items []domain.CartItem, lookup Lookup) Quote {
	return DefaultRules().Quote(items, lookup)
}

func (r Rules) Quote(items []domain.CartItem, lookup Lookup) Quote {
	subtotal := r.Subtotal(items, lookup)
	eligible := r.EligibleQuantity(items, lookup)
	bundles := r.Bundles(eligible)
	discount := r.BundleDiscount.Mul(decimal.NewFromInt(int64(bundles)))
	shipping := r.ShippingCost(subtotal)

	return Quote{
		Subtotal:         subtotal,
		Discount:         discount,
		ShippingCost:     shipping,
		Total:            r.Total(subtotal, discount, shipping),
		Currency:         r.Currency,
		Bundles:          bundles,
		EligibleQuantity: eligible,
		Lines:            Lines(items, lookup),
	}
}

// Lines prices every line with the unit price Subtotal uses. Lines with a
// non-positive quantity total zero.
func Lines(items []domain.CartItem, lookup Lookup) []LineQuote {
	lines := make([]LineQuote, 0, len(items))
	for _, item := range items {
		unit := UnitPrice(item, lookup)
		total := decimal.Zero
		if item.Quantity > 0 {
			total = unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		lines = append(lines, LineQuote{
			ItemID:    item.ID,
			UnitPrice: unit,
			LineTotal: total,
		})
	}
	return lines
}

func (r Rules) Subtotal(items []domain.CartItem, lookup Lookup) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(UnitPrice(item, lookup).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// EligibleQuantity counts units whose catalog category is bundle-eligible.
// Lines missing from the catalog never count.
func (r Rules) EligibleQuantity(items []domain.CartItem, lookup Lookup) int {
	var n int
	for _, item := range items {
		if item.Quantity <= 0 || lookup == nil {
			continue
		}
		product, ok := lookup(item.ProductID)
		if !ok || !slices.Contains(r.BundleCategories, product.Category) {
			continue
		}
		n += item.Quantity
	}
	return n
}

func (r Rules) Bundles(eligibleQuantity int) int {
	if r.BundleSize <= 0 || eligibleQuantity <= 0 {
		return 0
	}
	return eligibleQuantity / r.BundleSize
}

func (r Rules) ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(r.FreeShippingThreshold) {
		return decimal.Zero
	}
	return r.ShippingFee
}

// Total never drops below the shipping cost: the discounted subtotal is clamped at zero.
func (r Rules) Total(subtotal, discount, shipping decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, subtotal.Sub(discount)).Add(shipping)
}

// UnitPrice prefers the live catalog price and falls back to the price stored on the line.
func UnitPrice(item domain.CartItem, lookup Lookup) decimal.Decimal {
	if lookup != nil {
		if product, ok := lookup(item.ProductID); ok {
			return product.Price.Amount
		}
	}
	return item.Price.Amount
}
