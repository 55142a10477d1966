package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiscalbr/icmsst/internal/model"
)

// TaxRuleRecord is the persisted form of a tax rule, keyed by NCM.
type TaxRuleRecord struct {
	ID           uint            `gorm:"primaryKey"`
	NCM          string          `gorm:"type:text;not null;uniqueIndex:ux_tax_rule_ncm"`
	Description  string          `gorm:"type:text;not null"`
	Kind         string          `gorm:"type:text;not null"`
	Rate12       decimal.Decimal `gorm:"type:numeric;not null"`
	Rate4        decimal.Decimal `gorm:"type:numeric;not null"`
	MVA12        decimal.Decimal `gorm:"type:numeric;not null"`
	MVA4         decimal.Decimal `gorm:"type:numeric;not null"`
	ReductionST  decimal.Decimal `gorm:"type:numeric;not null"`
	ReductionOwn decimal.Decimal `gorm:"type:numeric;not null"`
	Notes        string          `gorm:"type:text"`
	Source       string          `gorm:"type:text"`
	Active       bool            `gorm:"not null;default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TaxRuleRecord) TableName() string { return "tax_rules" }

// CalculationRecord is a persisted batch result with its items.
type CalculationRecord struct {
	ID                uint            `gorm:"primaryKey"`
	Origin            string          `gorm:"type:text;not null;index"`
	InvoiceKey        string          `gorm:"type:text;index"`
	ItemCount         int             `gorm:"not null"`
	TotalValue        decimal.Decimal `gorm:"type:numeric;not null"`
	TotalSTDebit      decimal.Decimal `gorm:"type:numeric;not null"`
	TotalOwnCredit    decimal.Decimal `gorm:"type:numeric;not null"`
	TotalAmountDue    decimal.Decimal `gorm:"type:numeric;not null"`
	TotalExtraFreight decimal.Decimal `gorm:"type:numeric;not null"`
	TotalFinalCost    decimal.Decimal `gorm:"type:numeric;not null"`
	ItemsWithST       int             `gorm:"not null"`
	ItemsWithoutRule  int             `gorm:"not null"`
	Notes             string          `gorm:"type:text"`
	CalculatedAt      time.Time       `gorm:"not null;index"`
	CreatedAt         time.Time

	Items []CalculationItemRecord `gorm:"foreignKey:CalculationID;constraint:OnDelete:CASCADE"`
}

func (CalculationRecord) TableName() string { return "calculations" }

// CalculationItemRecord is one line of a persisted batch result.
type CalculationItemRecord struct {
	ID            uint            `gorm:"primaryKey"`
	CalculationID uint            `gorm:"not null;index"`
	Position      int             `gorm:"not null"`
	Code          string          `gorm:"type:text;not null"`
	Description   string          `gorm:"type:text;not null"`
	NCM           string          `gorm:"type:text;not null;index"`
	Kind          string          `gorm:"type:text;not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null"`
	TotalValue    decimal.Decimal `gorm:"type:numeric;not null"`
	IPI           decimal.Decimal `gorm:"type:numeric;not null"`
	Freight       decimal.Decimal `gorm:"type:numeric;not null"`
	ExtraFreight  decimal.Decimal `gorm:"type:numeric;not null"`
	Rate          decimal.Decimal `gorm:"type:numeric;not null"`
	MVA           decimal.Decimal `gorm:"type:numeric;not null"`
	ReductionST   decimal.Decimal `gorm:"type:numeric;not null"`
	ReductionOwn  decimal.Decimal `gorm:"type:numeric;not null"`
	STBase        decimal.Decimal `gorm:"type:numeric;not null"`
	STDebit       decimal.Decimal `gorm:"type:numeric;not null"`
	OwnCredit     decimal.Decimal `gorm:"type:numeric;not null"`
	AmountDue     decimal.Decimal `gorm:"type:numeric;not null"`
	FinalUnitCost decimal.Decimal `gorm:"type:numeric;not null"`
	RuleFound     bool            `gorm:"not null"`
	Notes         string          `gorm:"type:text"`
}

func (CalculationItemRecord) TableName() string { return "calculation_items" }

func ruleToRecord(rule model.TaxRule) TaxRuleRecord {
	return TaxRuleRecord{
		NCM:          rule.NCM,
		Description:  rule.Description,
		Kind:         string(rule.Kind),
		Rate12:       rule.Rate12,
		Rate4:        rule.Rate4,
		MVA12:        rule.MVA12,
		MVA4:         rule.MVA4,
		ReductionST:  rule.ReductionST,
		ReductionOwn: rule.ReductionOwn,
		Notes:        rule.Notes,
		Source:       rule.Source,
		Active:       rule.Active,
	}
}

func recordToRule(rec TaxRuleRecord) model.TaxRule {
	return model.TaxRule{
		NCM:          rec.NCM,
		Description:  rec.Description,
		Kind:         model.TaxationKind(rec.Kind),
		Rate12:       rec.Rate12,
		Rate4:        rec.Rate4,
		MVA12:        rec.MVA12,
		MVA4:         rec.MVA4,
		ReductionST:  rec.ReductionST,
		ReductionOwn: rec.ReductionOwn,
		Notes:        rec.Notes,
		Source:       rec.Source,
		Active:       rec.Active,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func resultToRecord(res *model.GeneralResult) CalculationRecord {
	rec := CalculationRecord{
		Origin:            string(res.Origin),
		InvoiceKey:        res.InvoiceKey,
		ItemCount:         res.ItemCount,
		TotalValue:        res.TotalValue,
		TotalSTDebit:      res.TotalSTDebit,
		TotalOwnCredit:    res.TotalOwnCredit,
		TotalAmountDue:    res.TotalAmountDue,
		TotalExtraFreight: res.TotalExtraFreight,
		TotalFinalCost:    res.TotalFinalCost,
		ItemsWithST:       res.ItemsWithST,
		ItemsWithoutRule:  res.ItemsWithoutRule,
		Notes:             joinNotes(res.Notes),
		CalculatedAt:      res.CalculatedAt,
	}
	for i, item := range res.Items {
		rec.Items = append(rec.Items, CalculationItemRecord{
			Position:      i,
			Code:          item.Code,
			Description:   item.Description,
			NCM:           item.NCM,
			Kind:          string(item.Kind),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalValue:    item.TotalValue,
			IPI:           item.IPI,
			Freight:       item.Freight,
			ExtraFreight:  item.ExtraFreight,
			Rate:          item.Rate,
			MVA:           item.MVA,
			ReductionST:   item.ReductionST,
			ReductionOwn:  item.ReductionOwn,
			STBase:        item.STBase,
			STDebit:       item.STDebit,
			OwnCredit:     item.OwnCredit,
			AmountDue:     item.AmountDue,
			FinalUnitCost: item.FinalUnitCost,
			RuleFound:     item.RuleFound,
			Notes:         joinNotes(item.Notes),
		})
	}
	return rec
}

func recordToResult(rec CalculationRecord) *model.GeneralResult {
	res := &model.GeneralResult{
		Origin:            model.Origin(rec.Origin),
		InvoiceKey:        rec.InvoiceKey,
		ItemCount:         rec.ItemCount,
		TotalValue:        rec.TotalValue,
		TotalSTDebit:      rec.TotalSTDebit,
		TotalOwnCredit:    rec.TotalOwnCredit,
		TotalAmountDue:    rec.TotalAmountDue,
		TotalExtraFreight: rec.TotalExtraFreight,
		TotalFinalCost:    rec.TotalFinalCost,
		ItemsWithST:       rec.ItemsWithST,
		ItemsWithoutRule:  rec.ItemsWithoutRule,
		Notes:             splitNotes(rec.Notes),
		CalculatedAt:      rec.CalculatedAt,
	}
	for _, item := range rec.Items {
		res.Items = append(res.Items, model.ItemResult{
			Code:          item.Code,
			Description:   item.Description,
			NCM:           item.NCM,
			Kind:          model.TaxationKind(item.Kind),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalValue:    item.TotalValue,
			IPI:           item.IPI,
			Freight:       item.Freight,
			ExtraFreight:  item.ExtraFreight,
			Rate:          item.Rate,
			MVA:           item.MVA,
			ReductionST:   item.ReductionST,
			ReductionOwn:  item.ReductionOwn,
			STBase:        item.STBase,
			STDebit:       item.STDebit,
			OwnCredit:     item.OwnCredit,
			AmountDue:     item.AmountDue,
			FinalUnitCost: item.FinalUnitCost,
			RuleFound:     item.RuleFound,
			Notes:         splitNotes(item.Notes),
		})
	}
	return res
}
