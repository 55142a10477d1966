package icmslib

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/icmsst/internal/calc"
)

// Calculator calculates ICMS-ST batches against a rule source.
type Calculator struct {
	engine *calc.Engine
}

// NewCalculator creates a calculator backed by any rule source, such
// as an in-memory Rules table.
func NewCalculator(rules RuleLookup) *Calculator {
	return &Calculator{engine: calc.NewEngine(rules, nil)}
}

// CalculateXML parses NFe XML content and calculates every item.
// Extra freight is apportioned across items by value.
func (c *Calculator) CalculateXML(ctx context.Context, xmlContent []byte, extraFreight decimal.Decimal) (*GeneralResult, error) {
	return c.engine.CalculateXML(ctx, xmlContent, extraFreight)
}

// CalculateManual calculates a batch of manually entered items.
func (c *Calculator) CalculateManual(ctx context.Context, items []ManualItem, extraFreight decimal.Decimal) (*GeneralResult, error) {
	return c.engine.CalculateManual(ctx, items, extraFreight)
}

// CalculateItems calculates a batch of already-built line items.
func (c *Calculator) CalculateItems(ctx context.Context, items []LineItem) (*GeneralResult, error) {
	return c.engine.CalculateBatch(ctx, items, "", OriginManual)
}
