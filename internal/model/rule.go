package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxationKind classifies how an NCM is taxed.
type TaxationKind string

const (
	// KindST marks goods subject to tax substitution
	KindST TaxationKind = "st"
	// KindTaxed marks goods taxed normally, outside substitution
	KindTaxed TaxationKind = "taxed"
	// KindError marks a placeholder result for an item whose
	// calculation failed
	KindError TaxationKind = "ERROR"
)

// TaxRule is the tax profile looked up by NCM when calculating ICMS-ST.
// It carries both candidate ICMS rates with their paired adjusted MVA
// percentages, plus the base reductions for the substitution and
// own-operation bases. Read-only from the calculator's perspective.
type TaxRule struct {
	NCM         string          `json:"ncm"`
	Description string          `json:"description"`
	Kind        TaxationKind    `json:"kind"`
	Rate12      decimal.Decimal `json:"rate_12"`
	Rate4       decimal.Decimal `json:"rate_4"`
	MVA12       decimal.Decimal `json:"mva_12"`
	MVA4        decimal.Decimal `json:"mva_4"`
	// ReductionST reduces the substitution calculation base (percent)
	ReductionST decimal.Decimal `json:"reduction_st"`
	// ReductionOwn reduces the own-operation credit base (percent)
	ReductionOwn decimal.Decimal `json:"reduction_own"`
	Notes        string          `json:"notes,omitempty"`
	Source       string          `json:"source,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Validate checks rule ranges: rates in [0,100], MVA in [0,1000],
// reductions in [0,100].
func (r *TaxRule) Validate() error {
	var errs []error

	if !isNumeric(r.NCM) || len(r.NCM) != 8 {
		errs = append(errs, NewValidationError("ncm", r.NCM, "ncm", "NCM must be 8 numeric digits"))
	}
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, NewValidationError("description", nil, "required", "description is required"))
	}
	if r.Kind != KindST && r.Kind != KindTaxed {
		errs = append(errs, NewValidationError("kind", string(r.Kind), "enum", "taxation kind must be 'st' or 'taxed'"))
	}
	if !inRange(r.Rate12, hundred) {
		errs = append(errs, NewValidationError("rate_12", r.Rate12.String(), "range", "ICMS 12% rate must be between 0 and 100"))
	}
	if !inRange(r.Rate4, hundred) {
		errs = append(errs, NewValidationError("rate_4", r.Rate4.String(), "range", "ICMS 4% rate must be between 0 and 100"))
	}
	if !inRange(r.MVA12, thousand) {
		errs = append(errs, NewValidationError("mva_12", r.MVA12.String(), "range", "adjusted MVA 12% must be between 0 and 1000"))
	}
	if !inRange(r.MVA4, thousand) {
		errs = append(errs, NewValidationError("mva_4", r.MVA4.String(), "range", "adjusted MVA 4% must be between 0 and 1000"))
	}
	if !inRange(r.ReductionST, hundred) {
		errs = append(errs, NewValidationError("reduction_st", r.ReductionST.String(), "range", "ST base reduction must be between 0 and 100"))
	}
	if !inRange(r.ReductionOwn, hundred) {
		errs = append(errs, NewValidationError("reduction_own", r.ReductionOwn.String(), "range", "own base reduction must be between 0 and 100"))
	}

	return errors.Join(errs...)
}

// RateFor returns the ICMS rate paired with the given rate percentage.
func (r *TaxRule) RateFor(rate decimal.Decimal) decimal.Decimal {
	if rate.Equal(decimal.NewFromInt(4)) {
		return r.Rate4
	}
	return r.Rate12
}

// MVAFor returns the adjusted MVA paired with the given rate percentage.
func (r *TaxRule) MVAFor(rate decimal.Decimal) decimal.Decimal {
	if rate.Equal(decimal.NewFromInt(4)) {
		return r.MVA4
	}
	return r.MVA12
}

func inRange(d, max decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(max)
}
