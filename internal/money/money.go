// Package money holds the decimal helpers shared by every priced value in the
// back office. Amounts are plain decimal.Decimal values; they are never floats.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits used when presenting money.
const DisplayPlaces = 2

var hundred = decimal.NewFromInt(100)

// Line returns price × quantity.
func Line(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// ApplyRate returns amount × rate without rounding.
func ApplyRate(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

// Sum adds all values; an empty call yields zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Round rounds half away from zero to DisplayPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// Format renders d rounded to DisplayPlaces, e.g. "140.27".
func Format(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}

// Percent renders a rate such as 0.15 as "15%".
func Percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String() + "%"
}

// ParseRate parses a tax-style rate. Both "0.15" and "15%" are accepted.
// An empty input yields def.
func ParseRate(s string, def decimal.Decimal) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	percent := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	if percent {
		d = d.Div(hundred)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("rate %q out of range [0, 1]", s)
	}
	return d, nil
}
