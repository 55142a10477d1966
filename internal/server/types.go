package server

import (
	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/model"
	"github.com/fiscalbr/icmsst/internal/store"
)

// ManualCalculationRequest is the request body for manual calculation.
// ExtraFreight is a decimal string apportioned across the items.
type ManualCalculationRequest struct {
	Items        []calc.ManualItem `json:"items"`
	ExtraFreight string            `json:"extra_freight,omitempty"`
}

// CalculationResponse wraps a calculation result with its history ID.
// Saved is false when the result could not be persisted.
type CalculationResponse struct {
	ID     uint                 `json:"id,omitempty"`
	Saved  bool                 `json:"saved"`
	Result *model.GeneralResult `json:"result"`
}

// RulesResponse is the response for the rule listing endpoint
type RulesResponse struct {
	Rules []model.TaxRule `json:"rules"`
	Count int             `json:"count"`
}

// CalculationsResponse is the response for the history listing endpoint
type CalculationsResponse struct {
	Calculations []store.CalculationSummary `json:"calculations"`
	Count        int                        `json:"count"`
}
