package calc

import (
	"github.com/shopspring/decimal"

	money "github.com/fiscalbr/icmsst/internal/decimal"
	"github.com/fiscalbr/icmsst/internal/model"
)

// ApportionFreight distributes an out-of-invoice freight total across
// items proportional to each item's total value, writing the share into
// ExtraFreight. Every item except the last gets its share rounded to 2
// decimals; the last item absorbs the rounding remainder so the shares
// always add up to the requested total.
//
// When the summed item value is zero the items are returned unchanged
// and the freight is dropped. Known limitation, kept on purpose.
func ApportionFreight(items []model.LineItem, total decimal.Decimal) []model.LineItem {
	if len(items) == 0 || !total.IsPositive() {
		return items
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalValue)
	}
	if sum.IsZero() {
		return items
	}

	allocated := decimal.Zero
	for i := range items {
		if i == len(items)-1 {
			items[i].ExtraFreight = total.Sub(allocated)
			break
		}
		share := money.Round2(total.Mul(items[i].TotalValue).Div(sum))
		items[i].ExtraFreight = share
		allocated = allocated.Add(share)
	}

	return items
}
