package calc_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/model"
)

func item(code string, total string) model.LineItem {
	return model.LineItem{
		Code:        code,
		Description: "item " + code,
		NCM:         "12345678",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString(total),
		TotalValue:  decimal.RequireFromString(total),
	}
}

func TestApportionFreight_Proportional(t *testing.T) {
	// Values 100, 200, 300 with freight 10.00: shares 1.67, 3.33 and a
	// last item forced to close the sum at exactly 10.00
	items := []model.LineItem{
		item("1", "100.00"),
		item("2", "200.00"),
		item("3", "300.00"),
	}

	items = calc.ApportionFreight(items, decimal.RequireFromString("10.00"))

	require.Len(t, items, 3)
	assert.True(t, items[0].ExtraFreight.Equal(decimal.RequireFromString("1.67")),
		"first share = %s", items[0].ExtraFreight)
	assert.True(t, items[1].ExtraFreight.Equal(decimal.RequireFromString("3.33")),
		"second share = %s", items[1].ExtraFreight)
	assert.True(t, items[2].ExtraFreight.Equal(decimal.RequireFromString("5.00")),
		"last share = %s", items[2].ExtraFreight)
}

func TestApportionFreight_SharesSumExactly(t *testing.T) {
	// The remainder always lands on the last item, so shares must sum
	// to the cent for any item count
	for _, n := range []int{1, 2, 3, 7, 13, 50} {
		t.Run(fmt.Sprintf("%d_items", n), func(t *testing.T) {
			items := make([]model.LineItem, 0, n)
			for i := 0; i < n; i++ {
				items = append(items, item(fmt.Sprint(i), fmt.Sprintf("%d.37", 10+i*3)))
			}
			total := decimal.RequireFromString("99.99")

			items = calc.ApportionFreight(items, total)

			sum := decimal.Zero
			for _, it := range items {
				sum = sum.Add(it.ExtraFreight)
			}
			assert.True(t, sum.Equal(total), "sum of shares = %s, want %s", sum, total)
		})
	}
}

func TestApportionFreight_ZeroItemValue(t *testing.T) {
	// Zero summed value: no apportionment, freight silently dropped
	items := []model.LineItem{
		{Code: "1", TotalValue: decimal.Zero},
		{Code: "2", TotalValue: decimal.Zero},
	}

	items = calc.ApportionFreight(items, decimal.RequireFromString("10.00"))

	for _, it := range items {
		assert.True(t, it.ExtraFreight.IsZero())
	}
}

func TestApportionFreight_KeepsOrderAndCount(t *testing.T) {
	items := []model.LineItem{item("a", "50.00"), item("b", "30.00"), item("c", "20.00")}

	items = calc.ApportionFreight(items, decimal.NewFromInt(5))

	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Code)
	assert.Equal(t, "b", items[1].Code)
	assert.Equal(t, "c", items[2].Code)
}

func TestApportionFreight_ZeroTotalNoop(t *testing.T) {
	items := []model.LineItem{item("1", "100.00")}

	items = calc.ApportionFreight(items, decimal.Zero)

	assert.True(t, items[0].ExtraFreight.IsZero())
}
