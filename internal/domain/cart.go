package domain

import (
	"github.com/google/uuid"
	"time"
)

type Cart struct {
	OwnerID string
	Items   []CartItem
}

// ItemCount is the total quantity across all lines.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type CartItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Size      string

	// Denormalized at add time so a cart can be rendered and priced without the catalog.
	Name     string
	Price    Money
	ImageURL string

	CreatedAt time.Time
}

func (i CartItem) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, Size: i.Size}
}

// ItemKey identifies a cart line. An empty size only matches another empty size.
type ItemKey struct {
	ProductID uuid.UUID
	Size      string
}

var guestItemNamespace = uuid.MustParse("8f1c2a4e-5b7d-4e0a-9c3f-6d2b1a0e7f55")

// ID derives a stable line identifier for stores that do not assign one.
func (k ItemKey) ID() uuid.UUID {
	return uuid.NewSHA1(guestItemNamespace, []byte(k.ProductID.String()+"/"+k.Size))
}
