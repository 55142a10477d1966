package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/fiscalbr/icmsst/internal/model"
)

// PDF renders the result as a printable ICMS-ST report.
func PDF(res *model.GeneralResult) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "ICMS-ST Calculation Report", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	meta := []string{
		"Origin: " + string(res.Origin),
		"Calculated at: " + res.CalculatedAt.Format("2006-01-02 15:04:05"),
	}
	if res.InvoiceKey != "" {
		meta = append(meta, "Invoice key: "+res.InvoiceKey)
	}
	metaCol := col.New(12)
	for i, line := range meta {
		metaCol.Add(text.New(line, props.Text{Size: 9, Top: float64(i * 4)}))
	}
	m.AddRow(float64(4*len(meta)+4), metaCol)

	m.AddRow(8,
		text.NewCol(12, "Items", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
	)

	m.AddRow(7,
		text.NewCol(3, "Product", props.Text{Style: fontstyle.Bold, Size: 8}),
		text.NewCol(1, "NCM", props.Text{Style: fontstyle.Bold, Size: 8}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "ST base", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "ST due", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(2, "Unit cost", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(1, "Rule", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
	)

	for _, item := range res.Items {
		ruleMark := "no"
		if item.RuleFound {
			ruleMark = "yes"
		}
		m.AddRow(6,
			text.NewCol(3, item.Description, props.Text{Size: 8}),
			text.NewCol(1, item.NCM, props.Text{Size: 8}),
			text.NewCol(1, item.Quantity.String(), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, item.TotalValue.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, item.STBase.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, item.AmountDue.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, item.FinalUnitCost.StringFixed(2), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(1, ruleMark, props.Text{Size: 8, Align: align.Right}),
		)
	}

	totals := []struct {
		label string
		value string
		bold  bool
	}{
		{"Total value", res.TotalValue.StringFixed(2), false},
		{"Total ST debit", res.TotalSTDebit.StringFixed(2), false},
		{"Total own credit", res.TotalOwnCredit.StringFixed(2), false},
		{"Total extra freight", res.TotalExtraFreight.StringFixed(2), false},
		{"Total final cost", res.TotalFinalCost.StringFixed(2), false},
		{"Total ST amount due", res.TotalAmountDue.StringFixed(2), true},
	}
	m.AddRow(8,
		text.NewCol(12, "Totals", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
	)
	for _, row := range totals {
		style := fontstyle.Normal
		if row.bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			col.New(6),
			text.NewCol(4, row.label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, row.value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	if len(res.Notes) > 0 {
		m.AddRow(8,
			text.NewCol(12, "Notes", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
		)
		for _, note := range res.Notes {
			m.AddRow(5,
				text.NewCol(12, note, props.Text{Size: 8}),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}
