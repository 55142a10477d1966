package calc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	money "github.com/fiscalbr/icmsst/internal/decimal"
	"github.com/fiscalbr/icmsst/internal/model"
)

// Aggregate reduces per-item results into the batch result. Sums run
// over the already-rounded per-item values; only the totals themselves
// get a final rounding. The returned result is complete and is not
// recomputed afterwards.
func Aggregate(items []model.ItemResult, origin model.Origin, invoiceKey string, notes []string, places int32) *model.GeneralResult {
	totalValue := decimal.Zero
	totalSTDebit := decimal.Zero
	totalOwnCredit := decimal.Zero
	totalAmountDue := decimal.Zero
	totalExtraFreight := decimal.Zero
	totalFinalCost := decimal.Zero

	itemsWithST := 0
	itemsWithoutRule := 0

	for i := range items {
		item := &items[i]
		totalValue = totalValue.Add(item.TotalValue)
		totalSTDebit = totalSTDebit.Add(item.STDebit)
		totalOwnCredit = totalOwnCredit.Add(item.OwnCredit)
		totalAmountDue = totalAmountDue.Add(item.AmountDue)
		totalExtraFreight = totalExtraFreight.Add(item.ExtraFreight)
		totalFinalCost = totalFinalCost.Add(item.FinalCost())

		if item.AmountDue.IsPositive() {
			itemsWithST++
		}
		if !item.RuleFound {
			itemsWithoutRule++
		}
	}

	if itemsWithoutRule > 0 {
		notes = append(notes, fmt.Sprintf("%d items without tax rule", itemsWithoutRule))
	}
	if itemsWithST == 0 {
		notes = append(notes, "no item had ST calculated")
	}

	return &model.GeneralResult{
		Origin:            origin,
		InvoiceKey:        invoiceKey,
		ItemCount:         len(items),
		TotalValue:        money.Round(totalValue, places),
		TotalSTDebit:      money.Round(totalSTDebit, places),
		TotalOwnCredit:    money.Round(totalOwnCredit, places),
		TotalAmountDue:    money.Round(totalAmountDue, places),
		TotalExtraFreight: money.Round(totalExtraFreight, places),
		TotalFinalCost:    money.Round(totalFinalCost, places),
		ItemsWithST:       itemsWithST,
		ItemsWithoutRule:  itemsWithoutRule,
		CalculatedAt:      time.Now().UTC(),
		Items:             items,
		Notes:             notes,
	}
}
