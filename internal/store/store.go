// Package store persists tax rules and calculation history in SQLite.
// It also serves as the rule lookup backing the calculation engine.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/model"
)

// Store wraps the SQLite database. Safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// Stats summarizes the persisted state.
type Stats struct {
	ActiveRules        int64 `json:"active_rules"`
	InactiveRules      int64 `json:"inactive_rules"`
	Calculations       int64 `json:"calculations"`
	CalculationsXML    int64 `json:"calculations_xml"`
	CalculationsManual int64 `json:"calculations_manual"`
}

// Open opens (creating if needed) the SQLite database at path and runs
// migrations. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&TaxRuleRecord{}, &CalculationRecord{}, &CalculationItemRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRule inserts or updates a rule keyed by NCM. Invalid rules are
// rejected before touching the database.
func (s *Store) SaveRule(ctx context.Context, rule model.TaxRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	rec := ruleToRecord(rule)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ncm"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "kind",
				"rate12", "rate4", "mva12", "mva4",
				"reduction_st", "reduction_own",
				"notes", "source", "active", "updated_at",
			}),
		}).
		Create(&rec).Error
}

// Lookup returns the active rule for an NCM. A missing or inactive
// rule yields calc.ErrRuleNotFound.
func (s *Store) Lookup(ctx context.Context, ncm string) (*model.TaxRule, error) {
	var rec TaxRuleRecord
	err := s.db.WithContext(ctx).
		Where("ncm = ? AND active = ?", ncm, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, calc.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rule lookup for NCM %s: %w", ncm, err)
	}
	rule := recordToRule(rec)
	return &rule, nil
}

// ListActive returns all active rules ordered by NCM.
func (s *Store) ListActive(ctx context.Context) ([]model.TaxRule, error) {
	var recs []TaxRuleRecord
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("ncm ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	rules := make([]model.TaxRule, 0, len(recs))
	for _, rec := range recs {
		rules = append(rules, recordToRule(rec))
	}
	return rules, nil
}

// DeactivateRule marks the rule for an NCM inactive. Deactivating an
// unknown NCM yields calc.ErrRuleNotFound.
func (s *Store) DeactivateRule(ctx context.Context, ncm string) error {
	res := s.db.WithContext(ctx).
		Model(&TaxRuleRecord{}).
		Where("ncm = ? AND active = ?", ncm, true).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate rule %s: %w", ncm, res.Error)
	}
	if res.RowsAffected == 0 {
		return calc.ErrRuleNotFound
	}
	return nil
}

// SaveCalculation persists a batch result with its items and returns
// the assigned ID.
func (s *Store) SaveCalculation(ctx context.Context, res *model.GeneralResult) (uint, error) {
	rec := resultToRecord(res)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("failed to save calculation: %w", err)
	}
	return rec.ID, nil
}

// GetCalculation loads a persisted batch result with its items in
// original order.
func (s *Store) GetCalculation(ctx context.Context, id uint) (*model.GeneralResult, error) {
	var rec CalculationRecord
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load calculation %d: %w", id, err)
	}
	return recordToResult(rec), nil
}

// CalculationSummary is a history listing row, without items.
type CalculationSummary struct {
	ID             uint   `json:"id"`
	Origin         string `json:"origin"`
	InvoiceKey     string `json:"invoice_key,omitempty"`
	ItemCount      int    `json:"item_count"`
	TotalAmountDue string `json:"total_amount_due"`
	CalculatedAt   string `json:"calculated_at"`
}

// ListCalculations returns recent calculations, newest first, capped
// at limit (default 50 when limit is not positive).
func (s *Store) ListCalculations(ctx context.Context, limit int) ([]CalculationSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	var recs []CalculationRecord
	if err := s.db.WithContext(ctx).
		Order("calculated_at DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}

	summaries := make([]CalculationSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, CalculationSummary{
			ID:             rec.ID,
			Origin:         rec.Origin,
			InvoiceKey:     rec.InvoiceKey,
			ItemCount:      rec.ItemCount,
			TotalAmountDue: rec.TotalAmountDue.StringFixed(2),
			CalculatedAt:   rec.CalculatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return summaries, nil
}

// Stats reports rule and calculation counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.ActiveRules, db.Model(&TaxRuleRecord{}).Where("active = ?", true)},
		{&stats.InactiveRules, db.Model(&TaxRuleRecord{}).Where("active = ?", false)},
		{&stats.Calculations, db.Model(&CalculationRecord{})},
		{&stats.CalculationsXML, db.Model(&CalculationRecord{}).Where("origin = ?", string(model.OriginXML))},
		{&stats.CalculationsManual, db.Model(&CalculationRecord{}).Where("origin = ?", string(model.OriginManual))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return Stats{}, fmt.Errorf("failed to collect stats: %w", err)
		}
	}
	return stats, nil
}

// Notes are joined with a newline for storage; empty notes collapse to
// an empty string rather than a single empty element.
func joinNotes(notes []string) string {
	return strings.Join(notes, "\n")
}

func splitNotes(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// compile-time check that Store satisfies the engine's lookup contract
var _ calc.RuleLookup = (*Store)(nil)
