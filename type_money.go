package retire

import (
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, used to report simulated values.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
	nan   bool // the simulated value was not a finite number
}

// M returns value in currency. The currency is an ISO 4217 code, "" stands
// for no currency at all.
func M(value float64, currency string) Money {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Money{cur: currency, nan: true}
	}
	return Money{value: decimal.NewFromFloat(value), cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted the currency's way, rounded to its minor unit.
func (m Money) String() string {
	if m.nan {
		return "NaN"
	}
	if money.GetCurrency(m.cur) == nil {
		// unknown or no currency: plain amount.
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() && !m.nan {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string   { return m.cur }
func (m Money) IsNegative() bool   { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool { return m.value.Equal(n.value) && m.cur == n.cur && m.nan == n.nan }

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	if m.nan {
		w.Append("amount", "NaN")
		return w.MarshalJSON()
	}
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}

// Percent is a ratio expressed in percent: 12.5 for 12.5%.
type Percent float64

// Ratio converts a ratio (0.125) to a Percent (12.5).
func Ratio(r float64) Percent { return Percent(100 * r) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64) + "%"
}
