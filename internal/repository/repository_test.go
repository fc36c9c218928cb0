package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := migrations.Up(connStr); err != nil {
		return nil, "", fmt.Errorf("migrations.Up: %w", err)
	}

	return postgresContainer, connStr, nil
}

// stopPostgres tolerates a container that never started.
func stopPostgres(pg *postgres.PostgresContainer) error {
	if pg == nil {
		return nil
	}
	if err := testcontainers.TerminateContainer(pg); err != nil {
		return fmt.Errorf("testcontainers.TerminateContainer: %w", err)
	}
	return nil
}

func randomCartItem() domain.CartItem {
	return domain.CartItem{
		ProductID: uuid.MustParse(gofakeit.UUID()),
		Quantity:  gofakeit.IntRange(1, 5),
		Name:      gofakeit.ProductName(),
		Price:     randomMoney(),
		ImageURL:  gofakeit.URL(),
	}
}

func randomMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Currency: randomCurrency(),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

var currencyComparer = cmp.Comparer(func(x, y currency.Unit) bool {
	return x.String() == y.String()
})

func assertNoDiff(t *testing.T, expected, actual any, opts ...cmp.Option) {
	t.Helper()

	diff := cmp.Diff(expected, actual, append(opts, currencyComparer)...)
	assert.Empty(t, diff)
}
