package calc

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/icmsst/internal/fiscal"
	"github.com/fiscalbr/icmsst/internal/model"
)

// ManualItem is one raw manual-entry row before validation. Quantity
// and unit price are required; IPI and freight default to zero.
type ManualItem struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	NCM         string          `json:"ncm"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IPI         decimal.Decimal `json:"ipi,omitempty"`
	Freight     decimal.Decimal `json:"freight,omitempty"`
}

// toLineItem validates the row and produces a normalized line item.
// The total value is derived from quantity and unit price.
func (m ManualItem) toLineItem() (*model.LineItem, error) {
	if strings.TrimSpace(m.Code) == "" {
		return nil, model.NewValidationError("code", nil, "required", "item code is required")
	}
	if strings.TrimSpace(m.Description) == "" {
		return nil, model.NewValidationError("description", nil, "required", "item description is required")
	}
	if !m.Quantity.IsPositive() {
		return nil, model.NewValidationError("quantity", m.Quantity.String(), "positive", "quantity must be greater than zero")
	}
	if !m.UnitPrice.IsPositive() {
		return nil, model.NewValidationError("unit_price", m.UnitPrice.String(), "positive", "unit price must be greater than zero")
	}
	if !fiscal.ValidNCM(m.NCM) {
		return nil, model.NewValidationError("ncm", m.NCM, "ncm", "NCM must be 8 numeric digits")
	}
	if m.IPI.IsNegative() {
		return nil, model.NewValidationError("ipi", m.IPI.String(), "non_negative", "IPI value must not be negative")
	}
	if m.Freight.IsNegative() {
		return nil, model.NewValidationError("freight", m.Freight.String(), "non_negative", "freight value must not be negative")
	}

	item := &model.LineItem{
		Code:        strings.TrimSpace(m.Code),
		Description: strings.TrimSpace(m.Description),
		NCM:         fiscal.NormalizeNCM(m.NCM),
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalValue:  m.Quantity.Mul(m.UnitPrice),
		IPI:         m.IPI,
		Freight:     m.Freight,
	}
	return item, nil
}
