package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/currency"
)

func testOrder() domain.Order {
	return domain.Order{
		ID: uuid.MustParse("3f2a9c1e-7d44-4b8e-9a61-5c0d2e8b7f10"),
		Customer: domain.Customer{
			Name:  "Rita <Haddad>",
			Email: "rita@example.com",
			Phone: "+961 1 234 567",
		},
		ShippingAddress: domain.ShippingAddress{
			City:     "Beirut",
			Street:   "Hamra",
			Building: "12",
			Floor:    "3",
			Country:  "Lebanon",
		},
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), ProductName: "Sunrise Mug", Quantity: 4, PriceAtPurchase: decimal.NewFromInt(8)},
			{ProductID: uuid.New(), ProductName: "Logo Tee", Quantity: 1, PriceAtPurchase: decimal.RequireFromString("19.5"), Size: "M"},
		},
		Subtotal:     decimal.RequireFromString("51.5"),
		Discount:     decimal.NewFromInt(10),
		ShippingCost: decimal.Zero,
		Total:        decimal.RequireFromString("41.5"),
		Currency:     currency.USD,
		Status:       domain.OrderStatusPending,
		CreatedAt:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

type capturedMail struct {
	to, subject, body string
}

type fakeSender struct {
	sent []capturedMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, capturedMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func TestOrderPlacedSubject(t *testing.T) {
	assert.Equal(t, "New Order #3f2a9c1e from Rita <Haddad>", OrderPlacedSubject(testOrder()))
}

func TestRenderOrderPlaced(t *testing.T) {
	body, err := RenderOrderPlaced(testOrder())
	require.NoError(t, err)

	for _, want := range []string{
		"New order #3f2a9c1e",
		"Rita &lt;Haddad&gt;",
		"rita@example.com",
		"Hamra, building 12, floor 3",
		"Lebanon",
		"Sunrise Mug",
		"32.00 USD",
		"19.50 USD",
		"Subtotal: 51.50 USD",
		"Bundle discount: -10.00 USD",
		"Shipping: Free",
		"Total: 41.50 USD",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "<Haddad>")
}

func TestRenderOrderPlaced_NoDiscountPaidShipping(t *testing.T) {
	order := testOrder()
	order.Discount = decimal.Zero
	order.ShippingCost = decimal.NewFromInt(5)

	body, err := RenderOrderPlaced(order)
	require.NoError(t, err)

	assert.NotContains(t, body, "Bundle discount")
	assert.Contains(t, body, "Shipping: 5.00 USD")
}

func TestMailer_NotifyOrderPlaced(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewMailer(sender, "seller@example.com")

	require.NoError(t, mailer.NotifyOrderPlaced(t.Context(), testOrder()))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "seller@example.com", sender.sent[0].to)
	assert.Equal(t, "New Order #3f2a9c1e from Rita <Haddad>", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "Sunrise Mug")
}

func TestMailer_Errors(t *testing.T) {
	err := NewMailer(&fakeSender{}, "").NotifyOrderPlaced(t.Context(), testOrder())
	require.EqualError(t, err, "seller email is empty")

	cause := errors.New("535 authentication failed")
	err = NewMailer(&fakeSender{err: cause}, "seller@example.com").NotifyOrderPlaced(t.Context(), testOrder())
	require.ErrorIs(t, err, cause)
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	msg := string(buildMessage("shop@example.com", "seller@example.com", "New Order #1 from Zoë\r\nBcc: x@evil.test", "<p>hi</p>", now))

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)

	assert.Contains(t, head, "From: shop@example.com\r\n")
	assert.Contains(t, head, "To: seller@example.com\r\n")
	assert.Contains(t, head, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, head, "Date: Fri, 14 Mar 2025 09:30:00 +0000")
	assert.Contains(t, head, "Subject: =?UTF-8?q?")
	assert.NotContains(t, head, "\r\nBcc:")
	assert.Equal(t, "<p>hi</p>\r\n", body)
}

func TestEnvelopeFrom(t *testing.T) {
	assert.Equal(t, "relay@example.com", envelopeFrom(SMTPConfig{User: "relay@example.com", From: "shop@example.com"}))
	assert.Equal(t, "shop@example.com", envelopeFrom(SMTPConfig{User: "apikey", From: "shop@example.com"}))
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_NotifyOrderPlaced(t *testing.T) {
	writer := &fakeWriter{}
	order := testOrder()

	require.NoError(t, NewKafkaPublisher(writer).NotifyOrderPlaced(t.Context(), order))

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, order.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, EventOrderPlaced, string(msg.Headers[0].Value))

	var event OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, "3f2a9c1e", event.ShortID)
	assert.Equal(t, "pending", event.Status)
	assert.Equal(t, "USD", event.Currency)
	assert.True(t, event.Total.Equal(order.Total))
	require.Len(t, event.Items, 2)
	assert.Equal(t, "M", event.Items[1].Size)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &raw))
	assert.Equal(t, "41.5", raw["total"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	cause := errors.New("leader not available")

	err := NewKafkaPublisher(&fakeWriter{err: cause}).NotifyOrderPlaced(t.Context(), testOrder())
	require.ErrorIs(t, err, cause)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "orders")
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "orders", w.Topic)
	assert.True(t, w.AllowAutoTopicCreation)
}

type funcNotifier func(context.Context, domain.Order) error

func (f funcNotifier) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	return f(ctx, order)
}

func TestFanout(t *testing.T) {
	var calls []string

	first := errors.New("smtp down")
	third := errors.New("kafka down")

	fanout := Fanout{
		funcNotifier(func(context.Context, domain.Order) error { calls = append(calls, "mail"); return first }),
		funcNotifier(func(context.Context, domain.Order) error { calls = append(calls, "log"); return nil }),
		funcNotifier(func(context.Context, domain.Order) error { calls = append(calls, "kafka"); return third }),
	}

	err := fanout.NotifyOrderPlaced(t.Context(), testOrder())
	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, third)
	assert.Equal(t, []string{"mail", "log", "kafka"}, calls)

	assert.NoError(t, Fanout{NewLog(zaptest.NewLogger(t))}.NotifyOrderPlaced(t.Context(), testOrder()))
	assert.NoError(t, Fanout{}.NotifyOrderPlaced(t.Context(), testOrder()))
}
