// Package calc implements the ICMS-ST calculation engine: freight
// apportionment, the per-item statutory formulas, batch aggregation and
// the orchestration around them.
package calc

import (
	"context"
	"errors"
	"sort"

	"github.com/fiscalbr/icmsst/internal/model"
)

// ErrRuleNotFound is returned by RuleLookup implementations when no
// active tax rule exists for an NCM. It is a valid outcome, distinct
// from a lookup failure.
var ErrRuleNotFound = errors.New("tax rule not found")

// RuleLookup resolves tax rules by NCM. Implementations must return
// ErrRuleNotFound (possibly wrapped) for missing rules so callers can
// tell "not found" apart from a failed lookup.
type RuleLookup interface {
	Lookup(ctx context.Context, ncm string) (*model.TaxRule, error)
	ListActive(ctx context.Context) ([]model.TaxRule, error)
}

// RuleMap is an in-memory RuleLookup keyed by NCM, used by tests and
// one-shot CLI runs that load rules from a file.
type RuleMap map[string]model.TaxRule

func (m RuleMap) Lookup(_ context.Context, ncm string) (*model.TaxRule, error) {
	rule, ok := m[ncm]
	if !ok || !rule.Active {
		return nil, ErrRuleNotFound
	}
	return &rule, nil
}

func (m RuleMap) ListActive(_ context.Context) ([]model.TaxRule, error) {
	rules := make([]model.TaxRule, 0, len(m))
	for _, rule := range m {
		if rule.Active {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].NCM < rules[j].NCM })
	return rules, nil
}
