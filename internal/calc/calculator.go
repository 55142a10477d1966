package calc

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	money "github.com/fiscalbr/icmsst/internal/decimal"
	"github.com/fiscalbr/icmsst/internal/fiscal"
	"github.com/fiscalbr/icmsst/internal/model"
)

// statutoryRate is the fixed 18% rate applied to the substitution base,
// independent of the 12%/4% own-operation rate.
var statutoryRate = decimal.RequireFromString("0.18")

var rate12 = decimal.NewFromInt(12)

// Option configures a Calculator.
type Option func(*Calculator)

// WithPrecision sets the number of decimal places monetary results are
// rounded to. Default is 2 (BRL cents).
func WithPrecision(places int32) Option {
	return func(c *Calculator) {
		c.places = places
	}
}

// Calculator applies the ICMS-ST statutory formulas to one line item at
// a time. Rounding precision is fixed at construction, so concurrent
// batches with different configurations never interfere.
type Calculator struct {
	rules  RuleLookup
	places int32
}

// NewCalculator creates a calculator backed by the given rule lookup.
func NewCalculator(rules RuleLookup, opts ...Option) *Calculator {
	c := &Calculator{
		rules:  rules,
		places: money.Places,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateItem resolves the item's tax rule and produces its result.
//
// Three paths: no rule found (cost passthrough, RuleFound=false), rule
// found but not subject to substitution (cost passthrough), and the
// full substitution formula path. A failed rule lookup — as opposed to
// a missing rule — is returned as an error for the orchestrator to
// isolate.
func (c *Calculator) CalculateItem(ctx context.Context, item model.LineItem) (*model.ItemResult, error) {
	res := newItemResult(item)

	ncm := fiscal.NormalizeNCM(item.NCM)

	rule, err := c.rules.Lookup(ctx, ncm)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			res.AddNote(fmt.Sprintf("tax rule not found for NCM %s", ncm))
			// Cost passthrough: no tax added, gross value carried as-is
			res.FinalUnitCost = c.round(item.GrossValue())
			return res, nil
		}
		return nil, fmt.Errorf("rule lookup for NCM %s: %w", ncm, err)
	}

	res.RuleFound = true
	res.Kind = rule.Kind
	res.ReductionST = rule.ReductionST
	res.ReductionOwn = rule.ReductionOwn

	if rule.Kind != model.KindST {
		res.AddNote("item not subject to tax substitution")
		res.FinalUnitCost = c.round(item.GrossValue())
		return res, nil
	}

	// Rate selection is fixed at the 12% branch. The 4% rate and its
	// MVA exist on the rule but are never chosen here; see the rules
	// data model.
	rate := c.chooseRate(rule, item)
	mva := rule.MVAFor(rate)

	// ST debit: gross value, marked up by the adjusted MVA, reduced by
	// the ST base reduction, taxed at the statutory 18%.
	grossBase := item.GrossValue()
	baseWithMVA := grossBase.Mul(decimal.NewFromInt(1).Add(money.Percent(mva)))
	stBase := baseWithMVA.Mul(money.ReductionFactor(rule.ReductionST))
	stDebit := stBase.Mul(statutoryRate)

	// Own-operation credit: product value, reduced by the own base
	// reduction, at the chosen rate.
	ownBase := item.TotalValue.Mul(money.ReductionFactor(rule.ReductionOwn))
	ownCredit := ownBase.Mul(money.Percent(rate))

	amountDue := stDebit.Sub(ownCredit)
	if amountDue.IsNegative() {
		amountDue = decimal.Zero
		res.AddNote("amount due zeroed (credit exceeds debit)")
	}

	res.Rate = rate
	res.MVA = mva
	res.STBase = c.round(stBase)
	res.STDebit = c.round(stDebit)
	res.OwnCredit = c.round(ownCredit)
	res.AmountDue = c.round(amountDue)
	res.FinalUnitCost = c.round(unitCost(item, amountDue))

	return res, nil
}

// chooseRate picks which of the rule's two ICMS rates applies to the
// item. Always the 12% branch for now; the 4% branch awaits a product
// decision on interstate origin handling.
func (c *Calculator) chooseRate(_ *model.TaxRule, _ model.LineItem) decimal.Decimal {
	return rate12
}

func (c *Calculator) round(d decimal.Decimal) decimal.Decimal {
	return money.Round(d, c.places)
}

// unitCost computes (total + amount due + IPI + freight + extra
// freight) / quantity, defensively zero when quantity is zero.
func unitCost(item model.LineItem, amountDue decimal.Decimal) decimal.Decimal {
	total := item.GrossValue().Add(amountDue)
	if item.Quantity.IsZero() {
		return decimal.Zero
	}
	return total.Div(item.Quantity)
}

func newItemResult(item model.LineItem) *model.ItemResult {
	return &model.ItemResult{
		Code:         item.Code,
		Description:  item.Description,
		NCM:          item.NCM,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		TotalValue:   item.TotalValue,
		IPI:          item.IPI,
		Freight:      item.Freight,
		ExtraFreight: item.ExtraFreight,
	}
}
