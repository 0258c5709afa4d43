package capgains

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd is the only accounting currency. Multi-currency accounting is out
// of scope; upstream normalization converts everything to USD.
const usd = "USD"

// Money represents a USD monetary value with exact decimal arithmetic.
type Money struct {
	value decimal.Decimal // major unit value
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal string into a Money value.
func ParseMoney(s string) (Money, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: value}, nil
}

// String returns a currency-formatted representation, e.g. "$1,234.56".
func (m Money) String() string {
	cur := money.GetCurrency(usd)
	cents := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(cents.Round(0).IntPart())
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value)} }

// MulScalar scales the amount by a dimensionless decimal factor.
func (m Money) MulScalar(f decimal.Decimal) Money { return Money{value: m.value.Mul(f)} }

// DivMoney returns the dimensionless ratio m / n.
func (m Money) DivMoney(n Money) decimal.Decimal { return m.value.Div(n.value) }

// ClampZero returns m, or zero if m is negative. Negative unit prices and
// cost bases are invalid and are clamped upstream of any lot arithmetic.
func (m Money) ClampZero() Money {
	if m.value.IsNegative() {
		return Money{}
	}
	return m
}

// Decimal exposes the raw decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// MarshalJSON implements the json.Marshaler interface for Money.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.value.UnmarshalJSON(b)
}
