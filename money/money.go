package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for stored and returned amounts.
const Places = 2

// Money is a fixed-point amount. Arithmetic keeps full precision; call Round
// before persisting or returning a value.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

func New(d decimal.Decimal) Money {
	return Money{d: d}
}

// Parse reads a decimal string such as "480.00".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for constants and seed data.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Times multiplies by an integer quantity.
func (m Money) Times(qty int) Money { return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))} }

// MulRate multiplies by a fractional rate such as 0.10.
func (m Money) MulRate(rate decimal.Decimal) Money { return Money{d: m.d.Mul(rate)} }

// Round rounds half-up to two places. Amounts are never negative, so
// decimal's half-away-from-zero rounding is half-up here.
func (m Money) Round() Money { return Money{d: m.d.Round(Places)} }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

// String renders the rounded amount with exactly two places.
func (m Money) String() string { return m.d.StringFixed(Places) }

// Sum adds a list of amounts.
func Sum(ms ...Money) Money {
	total := Zero
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.d.UnmarshalJSON(data)
}

// Value stores the amount rounded to two places.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.d = decimal.Zero
		return nil
	}
	return m.d.Scan(value)
}

// GormDataType lets AutoMigrate create a fixed-point column.
func (Money) GormDataType() string {
	return "decimal(12,2)"
}
