package repository_test

import (
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guestCartTTL = 24 * time.Hour

func setupGuestCart(t *testing.T) (port.CartRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
	})

	return repository.NewGuestCart(client, guestCartTTL), mr
}

func TestGuestCart_AddItem(t *testing.T) {
	repo, mr := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	item := randomCartItem()
	item.Quantity = 1

	first, err := repo.AddItem(ctx, guestID, item)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, item.Key().ID(), first.ID)

	second, err := repo.AddItem(ctx, guestID, item)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Quantity)
	assert.Equal(t, first.ID, second.ID)

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assertCartItem(t, domain.CartItem{
		ProductID: item.ProductID,
		Quantity:  2,
		Name:      item.Name,
		Price:     item.Price,
		ImageURL:  item.ImageURL,
	}, cart.Items[0])

	assert.Equal(t, guestCartTTL, mr.TTL("guestcart:"+guestID))
}

func TestGuestCart_AddItem_SizesAreDistinctLines(t *testing.T) {
	repo, _ := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	item := randomCartItem()
	sized := item
	sized.Size = "M"

	_, err := repo.AddItem(ctx, guestID, item)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, guestID, sized)
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Empty(t, cart.Items[0].Size)
	assert.Equal(t, "M", cart.Items[1].Size)
	assert.NotEqual(t, cart.Items[0].ID, cart.Items[1].ID)

	medium := "M"
	found, err := repo.FindItems(ctx, guestID, item.ProductID, &medium)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "M", found[0].Size)

	found, err = repo.FindItems(ctx, guestID, item.ProductID, nil)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGuestCart_AddItem_Validation(t *testing.T) {
	repo, _ := setupGuestCart(t)
	ctx := t.Context()

	_, err := repo.AddItem(ctx, "", randomCartItem())
	require.EqualError(t, err, "ownerID is empty")

	item := randomCartItem()
	item.Quantity = 0
	_, err = repo.AddItem(ctx, gofakeit.UUID(), item)
	require.EqualError(t, err, "quantity[0] is not positive")
}

func TestGuestCart_QuantityRange(t *testing.T) {
	repo, _ := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	item := randomCartItem()
	added, err := repo.AddItem(ctx, guestID, item)
	require.NoError(t, err)

	_, err = repo.UpdateQuantity(ctx, guestID, added.ID, math.MaxInt32+1)
	require.EqualError(t, err, "quantity[2147483648] is out of range")

	huge := item
	huge.Quantity = math.MaxInt32
	_, err = repo.AddItem(ctx, guestID, huge)
	require.ErrorContains(t, err, "is out of range")

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, item.Quantity, cart.Items[0].Quantity)
}

func TestGuestCart_AddItems(t *testing.T) {
	repo, _ := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	item1 := randomCartItem()
	item2 := randomCartItem()

	added, err := repo.AddItems(ctx, guestID, []domain.CartItem{item1, item2, item1})
	require.NoError(t, err)
	require.Len(t, added, 3)
	assert.Equal(t, item1.Quantity*2, added[2].Quantity)

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, item1.ProductID, cart.Items[0].ProductID)
	assert.Equal(t, item2.ProductID, cart.Items[1].ProductID)
}

func TestGuestCart_UpdateQuantity(t *testing.T) {
	repo, mr := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	added, err := repo.AddItem(ctx, guestID, randomCartItem())
	require.NoError(t, err)

	ok, err := repo.UpdateQuantity(ctx, guestID, added.ID, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	ok, err = repo.UpdateQuantity(ctx, guestID, uuid.New(), 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateQuantity(ctx, guestID, added.ID, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	cart, err = repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.False(t, mr.Exists("guestcart:"+guestID))
}

func TestGuestCart_DeleteItem(t *testing.T) {
	repo, _ := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	kept, err := repo.AddItem(ctx, guestID, randomCartItem())
	require.NoError(t, err)
	removed, err := repo.AddItem(ctx, guestID, randomCartItem())
	require.NoError(t, err)

	ok, err := repo.DeleteItem(ctx, guestID, removed.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DeleteItem(ctx, guestID, removed.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, kept.ID, cart.Items[0].ID)
}

func TestGuestCart_Clear(t *testing.T) {
	repo, _ := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()
	otherID := gofakeit.UUID()

	for _, owner := range []string{guestID, otherID} {
		_, err := repo.AddItem(ctx, owner, randomCartItem())
		require.NoError(t, err)
	}

	require.NoError(t, repo.Clear(ctx, guestID))
	require.NoError(t, repo.Clear(ctx, guestID))

	cart, err := repo.GetCart(ctx, guestID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	other, err := repo.GetCart(ctx, otherID)
	require.NoError(t, err)
	assert.Len(t, other.Items, 1)
}

func TestGuestCart_CorruptPayload(t *testing.T) {
	repo, mr := setupGuestCart(t)
	ctx := t.Context()
	guestID := gofakeit.UUID()

	require.NoError(t, mr.Set("guestcart:"+guestID, "{not json"))

	_, err := repo.GetCart(ctx, guestID)
	require.ErrorContains(t, err, "unmarshal guest cart failed")
}
