package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a currency-agnostic amount rounded to two decimal places.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds amount to cents.
func NewMoney(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MoneyFromInt builds a whole-unit amount, e.g. a base price of 95.
func MoneyFromInt(units int64) Money {
	return Money{Decimal: decimal.NewFromInt(units)}
}

// MarshalJSON renders the amount as a fixed two-decimal string ("133.00").
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a string or a JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
