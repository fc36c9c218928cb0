package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/currency"
)

type fakeCatalog struct {
	products []domain.Product
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := domain.NewCatalog(f.products).Lookup(id)
	if !ok {
		return domain.Product{}, port.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Snapshot(context.Context) (domain.Catalog, error) {
	return domain.NewCatalog(f.products), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	owners []string
}

func (p *recordingPublisher) Publish(ownerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owners = append(p.owners, ownerID)
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.owners...)
}

var (
	mug = domain.Product{
		ID:       uuid.MustParse("0b1f4f2e-2d0c-4a57-9d4a-2d5d9d9f0a01"),
		Name:     "Sunrise Mug",
		Category: domain.CategoryCups,
		Price:    domain.Money{Amount: decimal.NewFromInt(8), Currency: currency.USD},
		ImageURL: "https://cdn.example.com/mug.png",
	}
	tee = domain.Product{
		ID:       uuid.MustParse("0b1f4f2e-2d0c-4a57-9d4a-2d5d9d9f0a02"),
		Name:     "Logo Tee",
		Category: domain.CategoryTShirts,
		Price:    domain.Money{Amount: decimal.NewFromInt(20), Currency: currency.USD},
		Sizes:    []string{"S", "M", "L"},
	}
)

type fixture struct {
	svc       *cart.Service
	remote    port.CartRepository
	guest     port.CartRepository
	publisher *recordingPublisher
}

func setup(t *testing.T) fixture {
	t.Helper()
	return setupWithGuest(t, nil)
}

// setupWithGuest lets a test wrap the guest store, e.g. to inject failures.
func setupWithGuest(t *testing.T, wrap func(port.CartRepository) port.CartRepository) fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	// the remote store is exercised through the same contract; its postgres
	// implementation is covered by the repository suites
	remote := repository.NewGuestCart(client, time.Hour)
	guest := repository.NewGuestCart(client, time.Hour)
	if wrap != nil {
		guest = wrap(guest)
	}
	publisher := &recordingPublisher{}

	svc := cart.NewService(remote, guest, &fakeCatalog{products: []domain.Product{mug, tee}}, publisher, cart.Config{
		Rules:          pricing.DefaultRules(),
		RequestTimeout: time.Second,
	}, zaptest.NewLogger(t))

	return fixture{
		svc:       svc,
		remote:    remote,
		guest:     guest,
		publisher: publisher,
	}
}

func guestSession() domain.Session {
	return domain.GuestSession(uuid.NewString())
}

func TestService_AddToCart_MergesSameKey(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	first, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, mug.Name, first.Name)
	assert.True(t, mug.Price.Amount.Equal(first.Price.Amount))
	assert.Equal(t, mug.ImageURL, first.ImageURL)

	second, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Quantity)
	assert.Equal(t, first.ID, second.ID)

	c, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	count, err := f.svc.Count(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, []string{sess.GuestID, sess.GuestID}, f.publisher.published())
}

func TestService_AddToCart_Sizes(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	_, err := f.svc.AddToCart(ctx, sess, tee.ID, "", 1)
	require.ErrorIs(t, err, cart.ErrSizeRequired)

	_, err = f.svc.AddToCart(ctx, sess, tee.ID, "XXL", 1)
	require.ErrorIs(t, err, cart.ErrInvalidSize)

	medium, err := f.svc.AddToCart(ctx, sess, tee.ID, "M", 1)
	require.NoError(t, err)
	large, err := f.svc.AddToCart(ctx, sess, tee.ID, "L", 1)
	require.NoError(t, err)
	assert.NotEqual(t, medium.ID, large.ID)

	sizeless, err := f.svc.AddToCart(ctx, sess, mug.ID, "M", 1)
	require.NoError(t, err)
	assert.Empty(t, sizeless.Size)

	c, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, c.Items, 3)
	assert.Len(t, f.publisher.published(), 3)
}

func TestService_AddToCart_UnknownProduct(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AddToCart(t.Context(), guestSession(), uuid.New(), "", 1)
	require.ErrorIs(t, err, port.ErrProductNotFound)
	assert.Empty(t, f.publisher.published())
}

func TestService_NoOwner(t *testing.T) {
	f := setup(t)

	_, err := f.svc.GetCart(t.Context(), domain.Session{})
	require.EqualError(t, err, "ownerID is empty")

	_, err = f.svc.AddToCart(t.Context(), domain.Session{}, mug.ID, "", 1)
	require.EqualError(t, err, "ownerID is empty")
}

func TestService_Open(t *testing.T) {
	f := setup(t)

	repo, ownerID, err := f.svc.Open(domain.AuthenticatedSession(domain.Identity{Email: "jane@example.com"}, "guest-1"))
	require.NoError(t, err)
	assert.Same(t, f.remote, repo)
	assert.Equal(t, "jane@example.com", ownerID)

	repo, ownerID, err = f.svc.Open(domain.GuestSession("guest-1"))
	require.NoError(t, err)
	assert.Same(t, f.guest, repo)
	assert.Equal(t, "guest-1", ownerID)
}

func TestService_UpdateQuantity(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	item, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateQuantity(ctx, sess, item.ID, 5))

	count, err := f.svc.Count(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	err = f.svc.UpdateQuantity(ctx, sess, uuid.New(), 3)
	require.ErrorIs(t, err, port.ErrItemNotFound)

	require.NoError(t, f.svc.UpdateQuantity(ctx, sess, item.ID, 0))

	c, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestService_RemoveItem_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	item, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveItem(ctx, sess, item.ID))
	require.NoError(t, f.svc.RemoveItem(ctx, sess, item.ID))

	// add + first remove; the no-op remove does not signal
	assert.Len(t, f.publisher.published(), 2)
}

func TestService_Clear(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	_, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 3)
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(ctx, sess))

	count, err := f.svc.Count(ctx, sess)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_Quote_GuestBundle(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	_, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 4)
	require.NoError(t, err)

	c, quote, err := f.svc.Quote(ctx, sess)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	assert.Equal(t, "32", quote.Subtotal.String())
	assert.Equal(t, "10", quote.Discount.String())
	assert.Equal(t, "5", quote.ShippingCost.String())
	assert.Equal(t, "27", quote.Total.String())
	assert.Equal(t, "Bundle Deal (1x)", quote.DiscountLabel())
}

func TestService_MergeGuestCart(t *testing.T) {
	f := setup(t)
	ctx := t.Context()

	guest := guestSession()
	user := domain.AuthenticatedSession(domain.Identity{Email: "jane@example.com", FullName: "Jane"}, guest.GuestID)

	_, err := f.svc.AddToCart(ctx, guest, mug.ID, "", 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, guest, tee.ID, "M", 1)
	require.NoError(t, err)

	_, err = f.svc.AddToCart(ctx, user, mug.ID, "", 1)
	require.NoError(t, err)

	merged, err := f.svc.MergeGuestCart(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, merged)

	userCart, err := f.svc.GetCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, userCart.Items, 2)
	assert.Equal(t, mug.ID, userCart.Items[0].ProductID)
	assert.Equal(t, 3, userCart.Items[0].Quantity)
	assert.Equal(t, tee.ID, userCart.Items[1].ProductID)
	assert.Equal(t, "M", userCart.Items[1].Size)

	guestCart, err := f.svc.GetCart(ctx, guest)
	require.NoError(t, err)
	assert.True(t, guestCart.IsEmpty())

	merged, err = f.svc.MergeGuestCart(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, merged)

	merged, err = f.svc.MergeGuestCart(ctx, guest)
	require.NoError(t, err)
	assert.Zero(t, merged)
}

func TestService_AddToCart_ConcurrentClicks(t *testing.T) {
	f := setup(t)
	sess := guestSession()

	const clicks = 20

	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddToCart(context.Background(), sess, mug.ID, "", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := f.svc.GetCart(t.Context(), sess)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, clicks, c.Items[0].Quantity)
}

func TestService_QuantityRange(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	_, err := f.svc.AddToCart(ctx, sess, mug.ID, "", cart.MaxQuantity+1)
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	item, err := f.svc.AddToCart(ctx, sess, mug.ID, "", cart.MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, item.Quantity)

	err = f.svc.UpdateQuantity(ctx, sess, item.ID, 1<<62)
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	err = f.svc.UpdateQuantity(ctx, sess, item.ID, cart.MaxQuantity+1)
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)

	count, err := f.svc.Count(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, count)
}

func TestService_RemoveOrdered_KeepsUnitsAddedAfterSnapshot(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	_, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, sess, tee.ID, "M", 2)
	require.NoError(t, err)

	snapshot, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)

	// another tab adds after the order snapshot was taken
	_, err = f.svc.AddToCart(ctx, sess, mug.ID, "", 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, sess, tee.ID, "L", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveOrdered(ctx, sess, snapshot.Items))

	c, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	assert.Equal(t, mug.ID, c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, tee.ID, c.Items[1].ProductID)
	assert.Equal(t, "L", c.Items[1].Size)
	assert.Equal(t, 1, c.Items[1].Quantity)
}

func TestService_RemoveOrdered_LineAlreadyGone(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	sess := guestSession()

	item, err := f.svc.AddToCart(ctx, sess, mug.ID, "", 3)
	require.NoError(t, err)

	snapshot, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveItem(ctx, sess, item.ID))
	published := len(f.publisher.published())

	require.NoError(t, f.svc.RemoveOrdered(ctx, sess, snapshot.Items))

	c, err := f.svc.GetCart(ctx, sess)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Len(t, f.publisher.published(), published)
}

type failingClear struct {
	port.CartRepository
	err error
}

func (f failingClear) Clear(context.Context, string) error {
	return f.err
}

func TestService_MergeGuestCart_ClearFailureIsNotReported(t *testing.T) {
	f := setupWithGuest(t, func(repo port.CartRepository) port.CartRepository {
		return failingClear{CartRepository: repo, err: errors.New("redis: connection refused")}
	})
	ctx := t.Context()

	guest := guestSession()
	user := domain.AuthenticatedSession(domain.Identity{Email: "jane@example.com"}, guest.GuestID)

	_, err := f.svc.AddToCart(ctx, guest, mug.ID, "", 2)
	require.NoError(t, err)

	merged, err := f.svc.MergeGuestCart(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)

	userCart, err := f.svc.GetCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, 2, userCart.Items[0].Quantity)
}
