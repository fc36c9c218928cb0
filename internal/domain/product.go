package domain

import (
	"github.com/google/uuid"
	"slices"
	"time"
)

type Category string

const (
	CategoryTShirts       Category = "t_shirts"
	CategoryCups          Category = "cups"
	CategoryMakeupPouches Category = "makeup_pouches"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) IsKnown() bool {
	switch c {
	case CategoryTShirts, CategoryCups, CategoryMakeupPouches:
		return true
	}
	return false
}

type Product struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Price        Money
	Category     Category
	Sizes        []string
	ImageURL     string
	ImageGallery []string

	CreatedAt time.Time
}

func (p Product) RequiresSize() bool {
	return len(p.Sizes) > 0
}

func (p Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// DefaultSize is the size preselected on the product page: the second size when
// there are at least two, otherwise the first one.
func (p Product) DefaultSize() string {
	switch {
	case len(p.Sizes) > 1:
		return p.Sizes[1]
	case len(p.Sizes) == 1:
		return p.Sizes[0]
	default:
		return ""
	}
}

// Images returns the gallery, falling back to the main image.
func (p Product) Images() []string {
	if len(p.ImageGallery) > 0 {
		return p.ImageGallery
	}
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return nil
}

// Catalog is an immutable snapshot of all products indexed by ID.
type Catalog struct {
	products []Product
	byID     map[uuid.UUID]int
}

func NewCatalog(products []Product) Catalog {
	byID := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	return Catalog{
		products: products,
		byID:     byID,
	}
}

func (c Catalog) Lookup(id uuid.UUID) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c Catalog) Products() []Product {
	return slices.Clone(c.products)
}

func (c Catalog) Len() int {
	return len(c.products)
}
