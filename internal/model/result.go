package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin tags where a calculation batch came from.
type Origin string

const (
	OriginXML    Origin = "XML"
	OriginManual Origin = "MANUAL"
)

// ItemResult is the per-item outcome of an ICMS-ST calculation run.
// Monetary fields are rounded to the configured precision at
// construction; the struct is not modified afterwards except for notes
// accumulated while it is being built.
type ItemResult struct {
	Code         string          `json:"code"`
	Description  string          `json:"description"`
	NCM          string          `json:"ncm"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	IPI          decimal.Decimal `json:"ipi"`
	Freight      decimal.Decimal `json:"freight"`
	ExtraFreight decimal.Decimal `json:"extra_freight"`

	Kind         TaxationKind    `json:"kind,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
	MVA          decimal.Decimal `json:"mva"`
	ReductionST  decimal.Decimal `json:"reduction_st"`
	ReductionOwn decimal.Decimal `json:"reduction_own"`

	STBase        decimal.Decimal `json:"st_base"`
	STDebit       decimal.Decimal `json:"st_debit"`
	OwnCredit     decimal.Decimal `json:"own_credit"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	FinalUnitCost decimal.Decimal `json:"final_unit_cost"`

	RuleFound bool     `json:"rule_found"`
	Notes     []string `json:"notes,omitempty"`
}

// AddNote appends a human-readable note. Notes keep generation order
// and may repeat.
func (r *ItemResult) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}

// FinalCost is the item's total final cost (unit cost times quantity).
func (r *ItemResult) FinalCost() decimal.Decimal {
	return r.FinalUnitCost.Mul(r.Quantity)
}

// GeneralResult is the batch outcome: per-item results plus totals
// computed once at construction. Treat as immutable after that.
type GeneralResult struct {
	Origin     Origin `json:"origin"`
	InvoiceKey string `json:"invoice_key,omitempty"`

	ItemCount         int             `json:"item_count"`
	TotalValue        decimal.Decimal `json:"total_value"`
	TotalSTDebit      decimal.Decimal `json:"total_st_debit"`
	TotalOwnCredit    decimal.Decimal `json:"total_own_credit"`
	TotalAmountDue    decimal.Decimal `json:"total_amount_due"`
	TotalExtraFreight decimal.Decimal `json:"total_extra_freight"`
	TotalFinalCost    decimal.Decimal `json:"total_final_cost"`

	ItemsWithST      int `json:"items_with_st"`
	ItemsWithoutRule int `json:"items_without_rule"`

	CalculatedAt time.Time    `json:"calculated_at"`
	Items        []ItemResult `json:"items"`
	Notes        []string     `json:"notes,omitempty"`
}
