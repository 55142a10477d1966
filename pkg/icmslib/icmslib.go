// Package icmslib provides a public API for calculating ICMS-ST on
// Brazilian NFe invoices.
//
// Example usage:
//
//	rules := icmslib.Rules{
//	    "73181500": {
//	        NCM:         "73181500",
//	        Description: "fasteners",
//	        Kind:        icmslib.KindST,
//	        MVA12:       decimal.NewFromInt(40),
//	    },
//	}
//	calc := icmslib.NewCalculator(rules)
//	result, err := calc.CalculateXML(ctx, xmlContent, decimal.Zero)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.TotalAmountDue)
package icmslib

import (
	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/model"
)

// Re-export core types for public API
type (
	LineItem      = model.LineItem
	TaxRule       = model.TaxRule
	TaxationKind  = model.TaxationKind
	ItemResult    = model.ItemResult
	GeneralResult = model.GeneralResult
	Origin        = model.Origin
	ManualItem    = calc.ManualItem
	RuleLookup    = calc.RuleLookup
)

// Re-export taxation kinds
const (
	KindST    = model.KindST
	KindTaxed = model.KindTaxed
	KindError = model.KindError
)

// Re-export batch origins
const (
	OriginXML    = model.OriginXML
	OriginManual = model.OriginManual
)

// Re-export error types
type (
	ValidationError  = model.ValidationError
	CalculationError = model.CalculationError
	ParseError       = model.ParseError
)

// ErrRuleNotFound is returned by rule lookups when no active rule
// exists for an NCM.
var ErrRuleNotFound = calc.ErrRuleNotFound

// Rules is an in-memory rule table keyed by NCM.
type Rules = calc.RuleMap
