package calc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fiscalbr/icmsst/internal/model"
	"github.com/fiscalbr/icmsst/internal/parser/nfe"
)

// Engine orchestrates a calculation batch: freight apportionment,
// per-item calculation and aggregation. A failing item never aborts the
// batch; it is replaced by an ERROR placeholder result so input and
// output lists stay 1:1.
type Engine struct {
	calc *Calculator
	log  *zap.Logger
}

// NewEngine creates an engine over the given rule lookup.
func NewEngine(rules RuleLookup, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		calc: NewCalculator(rules, opts...),
		log:  log,
	}
}

// CalculateBatch computes one result per already-apportioned item and
// aggregates them. An empty batch is a calculation-level failure.
func (e *Engine) CalculateBatch(ctx context.Context, items []model.LineItem, invoiceKey string, origin model.Origin) (*model.GeneralResult, error) {
	if len(items) == 0 {
		return nil, model.NewCalculationError(origin, "no items to calculate", nil)
	}

	results := make([]model.ItemResult, 0, len(items))
	for _, item := range items {
		res, err := e.calculateItem(ctx, item)
		if err != nil {
			e.log.Error("item calculation failed",
				zap.String("code", item.Code),
				zap.String("ncm", item.NCM),
				zap.Error(err))
			res = errorResult(item, err)
		}
		results = append(results, *res)
	}

	general := Aggregate(results, origin, invoiceKey, nil, e.calc.places)
	e.log.Info("calculation finished",
		zap.String("origin", string(origin)),
		zap.Int("items", general.ItemCount),
		zap.String("total_amount_due", general.TotalAmountDue.String()))
	return general, nil
}

// CalculateXML parses an NFe document, apportions the out-of-invoice
// freight and calculates the batch with origin XML.
func (e *Engine) CalculateXML(ctx context.Context, xmlContent []byte, extraFreight decimal.Decimal) (*model.GeneralResult, error) {
	doc, err := nfe.Parse(xmlContent)
	if err != nil {
		return nil, model.NewCalculationError(model.OriginXML, "NFe parsing failed", err)
	}
	for _, w := range doc.Warnings {
		e.log.Warn("NFe item skipped", zap.String("reason", w))
	}
	if len(doc.Items) == 0 {
		return nil, model.NewCalculationError(model.OriginXML, "no products found in NFe", nil)
	}

	items := doc.Items
	if extraFreight.IsPositive() {
		items = ApportionFreight(items, extraFreight)
	}

	return e.CalculateBatch(ctx, items, doc.InvoiceKey, model.OriginXML)
}

// CalculateManual converts raw manual-entry rows, apportions freight
// and calculates the batch with origin MANUAL. Rows failing conversion
// are skipped with a logged reason; a batch where no row survives fails.
func (e *Engine) CalculateManual(ctx context.Context, rows []ManualItem, extraFreight decimal.Decimal) (*model.GeneralResult, error) {
	items := make([]model.LineItem, 0, len(rows))
	for i, row := range rows {
		item, err := row.toLineItem()
		if err != nil {
			e.log.Warn("manual item skipped",
				zap.Int("row", i+1),
				zap.Error(err))
			continue
		}
		items = append(items, *item)
	}

	if len(items) == 0 {
		return nil, model.NewCalculationError(model.OriginManual, "no valid items provided", nil)
	}

	if extraFreight.IsPositive() {
		items = ApportionFreight(items, extraFreight)
	}

	return e.CalculateBatch(ctx, items, "", model.OriginManual)
}

// calculateItem shields the batch from panics inside a single item's
// calculation, mapping them to errors like any other per-item failure.
func (e *Engine) calculateItem(ctx context.Context, item model.LineItem) (res *model.ItemResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("panic during item calculation: %v", r)
		}
	}()
	return e.calc.CalculateItem(ctx, item)
}

// errorResult builds the ERROR placeholder kept in place of a failed
// item. Monetary fields stay zero.
func errorResult(item model.LineItem, cause error) *model.ItemResult {
	res := newItemResult(item)
	res.Kind = model.KindError
	res.AddNote(fmt.Sprintf("calculation failed: %v", cause))
	return res
}

// Places returns the engine's configured rounding precision.
func (e *Engine) Places() int32 {
	return e.calc.places
}
