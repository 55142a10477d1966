package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/icmsst/internal/export"
	"github.com/fiscalbr/icmsst/internal/model"
)

func sampleResult() *model.GeneralResult {
	return &model.GeneralResult{
		Origin:         model.OriginXML,
		InvoiceKey:     "35240112345678000190550010000012341000012349",
		ItemCount:      2,
		TotalValue:     decimal.RequireFromString("300.00"),
		TotalSTDebit:   decimal.RequireFromString("25.20"),
		TotalOwnCredit: decimal.RequireFromString("12.00"),
		TotalAmountDue: decimal.RequireFromString("13.20"),
		TotalFinalCost: decimal.RequireFromString("313.20"),
		ItemsWithST:    1,
		CalculatedAt:   time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Notes:          []string{"freight apportioned across 2 items"},
		Items: []model.ItemResult{
			{
				Code:          "P1",
				Description:   "hex bolt",
				NCM:           "73181500",
				Kind:          model.KindST,
				Quantity:      decimal.NewFromInt(10),
				UnitPrice:     decimal.NewFromInt(10),
				TotalValue:    decimal.NewFromInt(100),
				Rate:          decimal.NewFromInt(12),
				MVA:           decimal.NewFromInt(40),
				STBase:        decimal.RequireFromString("140.00"),
				STDebit:       decimal.RequireFromString("25.20"),
				OwnCredit:     decimal.RequireFromString("12.00"),
				AmountDue:     decimal.RequireFromString("13.20"),
				FinalUnitCost: decimal.RequireFromString("11.32"),
				RuleFound:     true,
			},
			{
				Code:        "P2",
				Description: "plastic washer",
				NCM:         "39269090",
				Kind:        model.KindTaxed,
				Quantity:    decimal.NewFromInt(5),
				UnitPrice:   decimal.NewFromInt(40),
				TotalValue:  decimal.NewFromInt(200),
				RuleFound:   true,
				Notes:       []string{"item not subject to tax substitution", "checked manually"},
			},
		},
	}
}

func TestCSV(t *testing.T) {
	out, err := export.CSV(sampleResult())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// 12 summary rows, header, two item rows; the blank separator
	// line is skipped by the reader
	require.Len(t, records, 15)

	assert.Equal(t, []string{"origin", "XML"}, records[0])
	assert.Equal(t, []string{"total_amount_due", "13.20"}, records[6])

	header := records[12]
	assert.Equal(t, "code", header[0])
	assert.Equal(t, "notes", header[len(header)-1])

	first := records[13]
	assert.Equal(t, "P1", first[0])
	assert.Equal(t, "73181500", first[2])
	assert.Equal(t, "st", first[3])
	assert.Equal(t, "13.20", first[17])
	assert.Equal(t, "true", first[19])

	second := records[14]
	assert.Equal(t, "P2", second[0])
	assert.Equal(t, "item not subject to tax substitution; checked manually", second[20])
}

func TestCSV_EmptyItems(t *testing.T) {
	res := sampleResult()
	res.Items = nil

	out, err := export.CSV(res)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
}

func TestPDF(t *testing.T) {
	out, err := export.PDF(sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// PDF magic bytes
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDF_NoInvoiceKey(t *testing.T) {
	res := sampleResult()
	res.Origin = model.OriginManual
	res.InvoiceKey = ""
	res.Notes = nil

	out, err := export.PDF(res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
