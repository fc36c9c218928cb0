package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"slices"
	"time"
)

const guestCartMaxRetries = 10

type guestCartRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewGuestCart returns the cart store of anonymous visitors. Each guest cart is an
// ordered JSON list under one key; every write refreshes the key's TTL.
func NewGuestCart(client *redis.Client, ttl time.Duration) port.CartRepository {
	return &guestCartRepository{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

type guestLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	ImageURL  string          `json:"image_url,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

func (l guestLine) key() domain.ItemKey {
	return domain.ItemKey{ProductID: l.ProductID, Size: l.Size}
}

func (r *guestCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	lines, err := r.load(ctx, r.client, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	items, err := mapGuestLinesToDomain(lines)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapGuestLinesToDomain: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *guestCartRepository) FindItems(ctx context.Context, ownerID string, productID uuid.UUID, size *string) ([]domain.CartItem, error) {
	cart, err := r.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var items []domain.CartItem
	for _, item := range cart.Items {
		if item.ProductID != productID {
			continue
		}
		if size != nil && item.Size != *size {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *guestCartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) (domain.CartItem, error) {
	added, err := r.AddItems(ctx, ownerID, []domain.CartItem{item})
	if err != nil {
		return domain.CartItem{}, err
	}

	return added[0], nil
}

func (r *guestCartRepository) AddItems(ctx context.Context, ownerID string, items []domain.CartItem) ([]domain.CartItem, error) {
	for _, item := range items {
		if err := validateNewItem(ownerID, item); err != nil {
			return nil, err
		}
	}

	var added []domain.CartItem
	err := r.mutate(ctx, ownerID, func(lines []guestLine) ([]guestLine, error) {
		added = added[:0]
		for _, item := range items {
			var i int
			lines, i = mergeGuestLine(lines, item, r.now())
			if err := validateQuantity(lines[i].Quantity); err != nil {
				return nil, err
			}

			a, err := mapGuestLineToDomain(lines[i])
			if err != nil {
				return nil, fmt.Errorf("mapGuestLineToDomain: %w", err)
			}
			added = append(added, a)
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

func (r *guestCartRepository) UpdateQuantity(ctx context.Context, ownerID string, itemID uuid.UUID, quantity int) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return false, err
	}

	var found bool
	err := r.mutate(ctx, ownerID, func(lines []guestLine) ([]guestLine, error) {
		i := slices.IndexFunc(lines, func(l guestLine) bool { return l.key().ID() == itemID })
		found = i >= 0
		if !found {
			return nil, errNoChange
		}
		if quantity <= 0 {
			return slices.Delete(lines, i, i+1), nil
		}
		lines[i].Quantity = quantity
		return lines, nil
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

func (r *guestCartRepository) DeleteItem(ctx context.Context, ownerID string, itemID uuid.UUID) (bool, error) {
	return r.UpdateQuantity(ctx, ownerID, itemID, 0)
}

func (r *guestCartRepository) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if err := r.client.Del(ctx, guestCartKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}

	return nil
}

// errNoChange aborts a mutation without writing.
var errNoChange = errors.New("no change")

// mutate runs a read-modify-write of one guest cart as an optimistic transaction,
// retrying when another writer touched the key between WATCH and EXEC.
func (r *guestCartRepository) mutate(ctx context.Context, ownerID string, fn func([]guestLine) ([]guestLine, error)) error {
	key := guestCartKey(ownerID)

	txf := func(tx *redis.Tx) error {
		lines, err := r.load(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		lines, err = fn(lines)
		if err != nil {
			return err
		}

		data, err := json.Marshal(lines)
		if err != nil {
			return fmt.Errorf("marshal guest cart failed: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(lines) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < guestCartMaxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil, errors.Is(err, errNoChange):
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return fmt.Errorf("redis watch failed: %w", err)
		}
	}

	return fmt.Errorf("guest cart[%s] is contended: gave up after %d attempts", ownerID, guestCartMaxRetries)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *guestCartRepository) load(ctx context.Context, c stringGetter, ownerID string) ([]guestLine, error) {
	data, err := c.Get(ctx, guestCartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []guestLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal guest cart failed: %w", err)
	}

	return lines, nil
}

// mergeGuestLine adds item into lines by (product, size) key and returns the index of the touched line.
func mergeGuestLine(lines []guestLine, item domain.CartItem, now time.Time) ([]guestLine, int) {
	key := item.Key()
	if i := slices.IndexFunc(lines, func(l guestLine) bool { return l.key() == key }); i >= 0 {
		lines[i].Quantity += item.Quantity
		return lines, i
	}

	lines = append(lines, guestLine{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Size:      item.Size,
		Name:      item.Name,
		Price:     item.Price.Amount,
		Currency:  item.Price.Currency.String(),
		ImageURL:  item.ImageURL,
		AddedAt:   now,
	})
	return lines, len(lines) - 1
}

func mapGuestLineToDomain(l guestLine) (domain.CartItem, error) {
	price, err := mapMoney(l.Price, l.Currency)
	if err != nil {
		return domain.CartItem{}, err
	}

	return domain.CartItem{
		ID:        l.key().ID(),
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Size:      l.Size,
		Name:      l.Name,
		Price:     price,
		ImageURL:  l.ImageURL,
		CreatedAt: l.AddedAt,
	}, nil
}

func mapGuestLinesToDomain(lines []guestLine) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(lines))

	for _, l := range lines {
		item, err := mapGuestLineToDomain(l)
		if err != nil {
			return nil, fmt.Errorf("mapGuestLineToDomain: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func guestCartKey(guestID string) string {
	return fmt.Sprintf("guestcart:%s", guestID)
}
