package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, cur currency.Unit) Money {
	return Money{Amount: amount, Currency: cur}
}

// Mul returns the amount multiplied by a line quantity.
func (m Money) Mul(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

// String renders the amount with two decimals followed by the ISO code, e.g. "12.50 USD".
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency.String()
}
