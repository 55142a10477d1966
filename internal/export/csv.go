// Package export renders calculation results as CSV and PDF reports.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/fiscalbr/icmsst/internal/model"
)

var csvHeader = []string{
	"code", "description", "ncm", "kind",
	"quantity", "unit_price", "total_value", "ipi", "freight", "extra_freight",
	"rate", "mva", "reduction_st", "reduction_own",
	"st_base", "st_debit", "own_credit", "amount_due", "final_unit_cost",
	"rule_found", "notes",
}

// CSV renders the result as a two-section report: a summary block
// followed by one detail row per item.
func CSV(res *model.GeneralResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	summary := [][]string{
		{"origin", string(res.Origin)},
		{"invoice_key", res.InvoiceKey},
		{"item_count", fmt.Sprintf("%d", res.ItemCount)},
		{"total_value", res.TotalValue.StringFixed(2)},
		{"total_st_debit", res.TotalSTDebit.StringFixed(2)},
		{"total_own_credit", res.TotalOwnCredit.StringFixed(2)},
		{"total_amount_due", res.TotalAmountDue.StringFixed(2)},
		{"total_extra_freight", res.TotalExtraFreight.StringFixed(2)},
		{"total_final_cost", res.TotalFinalCost.StringFixed(2)},
		{"items_with_st", fmt.Sprintf("%d", res.ItemsWithST)},
		{"items_without_rule", fmt.Sprintf("%d", res.ItemsWithoutRule)},
		{"calculated_at", res.CalculatedAt.Format("2006-01-02 15:04:05")},
	}
	for _, row := range summary {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV summary: %w", err)
		}
	}

	// blank separator row between sections
	if err := w.Write([]string{}); err != nil {
		return nil, fmt.Errorf("failed to write CSV separator: %w", err)
	}

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, item := range res.Items {
		row := []string{
			item.Code,
			item.Description,
			item.NCM,
			string(item.Kind),
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			item.TotalValue.StringFixed(2),
			item.IPI.StringFixed(2),
			item.Freight.StringFixed(2),
			item.ExtraFreight.StringFixed(2),
			item.Rate.StringFixed(2),
			item.MVA.StringFixed(2),
			item.ReductionST.StringFixed(2),
			item.ReductionOwn.StringFixed(2),
			item.STBase.StringFixed(2),
			item.STDebit.StringFixed(2),
			item.OwnCredit.StringFixed(2),
			item.AmountDue.StringFixed(2),
			item.FinalUnitCost.StringFixed(2),
			fmt.Sprintf("%t", item.RuleFound),
			joinNotes(item.Notes),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for %s: %w", item.Code, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func joinNotes(notes []string) string {
	out := ""
	for i, n := range notes {
		if i > 0 {
			out += "; "
		}
		out += n
	}
	return out
}
