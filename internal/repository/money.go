package repository

import (
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"strings"
)

func mapMoney(amount decimal.Decimal, code string) (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	return domain.Money{Amount: amount, Currency: parsedCurrency}, nil
}
