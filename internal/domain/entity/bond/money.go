package bond

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount rounded to cents. Ties round away from zero.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(v float64) Money {
	return Money{amount: decimal.NewFromFloat(v).Round(2)}
}

// ParseMoney reads an amount rendered by Money.String.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{amount: d.Round(2)}, nil
}

func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

func (m Money) Decimal() decimal.Decimal { return m.amount }

// String always renders two fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON renders a JSON number with two fractional digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.amount = d.Round(2)
	return nil
}
