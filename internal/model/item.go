package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one normalized invoice line, independent of its origin
// (NFe XML or manual entry).
type LineItem struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	NCM         string          `json:"ncm"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalValue  decimal.Decimal `json:"total_value"`
	IPI         decimal.Decimal `json:"ipi"`
	Freight     decimal.Decimal `json:"freight"`

	// ExtraFreight is the out-of-invoice freight share assigned to this
	// item by apportionment. Always present, zero until apportioned.
	ExtraFreight decimal.Decimal `json:"extra_freight"`
}

// Validate checks the item invariants: positive quantity and unit price,
// non-empty identity fields, 8-digit numeric NCM.
func (i *LineItem) Validate() error {
	if strings.TrimSpace(i.Code) == "" {
		return NewValidationError("code", nil, "required", "item code is required")
	}
	if strings.TrimSpace(i.Description) == "" {
		return NewValidationError("description", nil, "required", "item description is required")
	}
	if !i.Quantity.IsPositive() {
		return NewValidationError("quantity", i.Quantity.String(), "positive", "quantity must be greater than zero")
	}
	if !i.UnitPrice.IsPositive() {
		return NewValidationError("unit_price", i.UnitPrice.String(), "positive", "unit price must be greater than zero")
	}
	if !isNumeric(i.NCM) || len(i.NCM) != 8 {
		return NewValidationError("ncm", i.NCM, "ncm", "NCM must be 8 numeric digits")
	}
	if i.IPI.IsNegative() {
		return NewValidationError("ipi", i.IPI.String(), "non_negative", "IPI value must not be negative")
	}
	if i.Freight.IsNegative() {
		return NewValidationError("freight", i.Freight.String(), "non_negative", "freight value must not be negative")
	}
	return nil
}

// GrossValue is the item value plus IPI, invoice freight and the
// apportioned out-of-invoice freight. It is the base the substitution
// formulas start from.
func (i *LineItem) GrossValue() decimal.Decimal {
	return i.TotalValue.Add(i.IPI).Add(i.Freight).Add(i.ExtraFreight)
}

func isNumeric(s string) bool {
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
