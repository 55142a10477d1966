package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/model"
	"github.com/fiscalbr/icmsst/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRule(ncm string) model.TaxRule {
	return model.TaxRule{
		NCM:          ncm,
		Description:  "fasteners of iron or steel",
		Kind:         model.KindST,
		Rate12:       decimal.NewFromInt(18),
		Rate4:        decimal.NewFromInt(18),
		MVA12:        decimal.NewFromInt(40),
		MVA4:         decimal.NewFromInt(60),
		ReductionST:  decimal.Zero,
		ReductionOwn: decimal.Zero,
		Active:       true,
	}
}

func TestStore_SaveAndLookupRule(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRule(ctx, sampleRule("73181500")))

	rule, err := s.Lookup(ctx, "73181500")
	require.NoError(t, err)
	assert.Equal(t, "73181500", rule.NCM)
	assert.Equal(t, model.KindST, rule.Kind)
	assert.True(t, rule.MVA12.Equal(decimal.NewFromInt(40)))
	assert.True(t, rule.Active)
}

func TestStore_Lookup_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Lookup(context.Background(), "99999999")
	assert.ErrorIs(t, err, calc.ErrRuleNotFound)
}

func TestStore_SaveRule_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)

	rule := sampleRule("123")
	err := s.SaveRule(context.Background(), rule)
	require.Error(t, err)

	var vErr *model.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestStore_SaveRule_UpsertsByNCM(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRule(ctx, sampleRule("73181500")))

	updated := sampleRule("73181500")
	updated.MVA12 = decimal.NewFromInt(55)
	updated.Description = "updated description"
	require.NoError(t, s.SaveRule(ctx, updated))

	rule, err := s.Lookup(ctx, "73181500")
	require.NoError(t, err)
	assert.True(t, rule.MVA12.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, "updated description", rule.Description)

	rules, err := s.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestStore_DeactivateRule(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRule(ctx, sampleRule("73181500")))
	require.NoError(t, s.DeactivateRule(ctx, "73181500"))

	_, err := s.Lookup(ctx, "73181500")
	assert.ErrorIs(t, err, calc.ErrRuleNotFound)

	// Deactivating again reports not found
	assert.ErrorIs(t, s.DeactivateRule(ctx, "73181500"), calc.ErrRuleNotFound)
}

func TestStore_ListActive_SortedByNCM(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, ncm := range []string{"84119100", "39269090", "73181500"} {
		require.NoError(t, s.SaveRule(ctx, sampleRule(ncm)))
	}
	require.NoError(t, s.DeactivateRule(ctx, "39269090"))

	rules, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "73181500", rules[0].NCM)
	assert.Equal(t, "84119100", rules[1].NCM)
}

func sampleResult() *model.GeneralResult {
	return &model.GeneralResult{
		Origin:         model.OriginXML,
		InvoiceKey:     "35240112345678000190550010000012341000012349",
		ItemCount:      2,
		TotalValue:     decimal.RequireFromString("300.00"),
		TotalSTDebit:   decimal.RequireFromString("54.00"),
		TotalOwnCredit: decimal.RequireFromString("36.00"),
		TotalAmountDue: decimal.RequireFromString("18.00"),
		TotalFinalCost: decimal.RequireFromString("318.00"),
		ItemsWithST:    2,
		CalculatedAt:   time.Now().UTC(),
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
				Notes:       []string{"item not subject to tax substitution"},
			},
		},
	}
}

func TestStore_SaveAndGetCalculation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveCalculation(ctx, sampleResult())
	require.NoError(t, err)
	require.NotZero(t, id)

	loaded, err := s.GetCalculation(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, model.OriginXML, loaded.Origin)
	assert.Equal(t, "35240112345678000190550010000012341000012349", loaded.InvoiceKey)
	assert.Equal(t, 2, loaded.ItemCount)
	assert.True(t, loaded.TotalAmountDue.Equal(decimal.RequireFromString("18.00")))
	assert.Equal(t, []string{"freight apportioned across 2 items"}, loaded.Notes)

	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "P1", loaded.Items[0].Code)
	assert.Equal(t, "P2", loaded.Items[1].Code)
	assert.True(t, loaded.Items[0].STDebit.Equal(decimal.RequireFromString("25.20")))
	assert.Equal(t, []string{"item not subject to tax substitution"}, loaded.Items[1].Notes)
}

func TestStore_GetCalculation_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetCalculation(context.Background(), 123)
	assert.Error(t, err)
}

func TestStore_ListCalculations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleResult()
	first.CalculatedAt = time.Now().UTC().Add(-time.Hour)
	_, err := s.SaveCalculation(ctx, first)
	require.NoError(t, err)

	second := sampleResult()
	second.Origin = model.OriginManual
	second.InvoiceKey = ""
	_, err = s.SaveCalculation(ctx, second)
	require.NoError(t, err)

	list, err := s.ListCalculations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first
	assert.Equal(t, string(model.OriginManual), list[0].Origin)
	assert.Equal(t, string(model.OriginXML), list[1].Origin)
	assert.Equal(t, "18.00", list[0].TotalAmountDue)
}

func TestStore_Stats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRule(ctx, sampleRule("73181500")))
	require.NoError(t, s.SaveRule(ctx, sampleRule("39269090")))
	require.NoError(t, s.DeactivateRule(ctx, "39269090"))

	_, err := s.SaveCalculation(ctx, sampleResult())
	require.NoError(t, err)

	manual := sampleResult()
	manual.Origin = model.OriginManual
	_, err = s.SaveCalculation(ctx, manual)
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ActiveRules)
	assert.Equal(t, int64(1), stats.InactiveRules)
	assert.Equal(t, int64(2), stats.Calculations)
	assert.Equal(t, int64(1), stats.CalculationsXML)
	assert.Equal(t, int64(1), stats.CalculationsManual)
}
