package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Places is the default monetary precision (BRL cents)
const Places int32 = 2

var hundred = decimal.NewFromInt(100)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromFloat creates decimal from float with monetary rounding
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(Places)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round rounds to the given number of places half-up (shopspring rounds
// half away from zero, which is half-up for the non-negative amounts
// handled here).
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Round2 rounds to 2 decimal places half-up
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent converts a percentage figure to its fractional factor: p/100
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// ApplyPercent computes amount * (p/100), unrounded
func ApplyPercent(amount, p decimal.Decimal) decimal.Decimal {
	return amount.Mul(p).Div(hundred)
}

// ReductionFactor computes (100 - p) / 100, the factor left after a
// base reduction of p percent
func ReductionFactor(p decimal.Decimal) decimal.Decimal {
	return hundred.Sub(p).Div(hundred)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
