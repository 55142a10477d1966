// Package fiscal holds validators for Brazilian fiscal identifiers used
// across the calculator: NCM codes, NFe access keys and CNPJ numbers.
package fiscal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeNCM strips every non-digit character from an NCM code.
func NormalizeNCM(ncm string) string {
	var b strings.Builder
	for _, r := range ncm {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidNCM reports whether the code normalizes to exactly 8 digits.
func ValidNCM(ncm string) bool {
	return len(NormalizeNCM(ncm)) == 8
}

// ValidInvoiceKey reports whether s is a 44-digit NFe access key.
func ValidInvoiceKey(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) == 44 && allDigits(s)
}

// ValidCNPJ reports whether s holds a 14-digit CNPJ after stripping
// punctuation. Check digits are not verified.
func ValidCNPJ(s string) bool {
	digits := NormalizeNCM(s)
	return len(digits) == 14
}

// ValidMonetary reports whether d is usable as a monetary amount (>= 0).
func ValidMonetary(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// ValidPercent reports whether d lies within [min, max].
func ValidPercent(d, min, max decimal.Decimal) bool {
	return d.GreaterThanOrEqual(min) && d.LessThanOrEqual(max)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
