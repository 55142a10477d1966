package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fiscalbr/icmsst/internal/fiscal"
	"github.com/fiscalbr/icmsst/internal/model"
)

var (
	ruleNCM          string
	ruleDescription  string
	ruleKind         string
	ruleRate12       string
	ruleRate4        string
	ruleMVA12        string
	ruleMVA4         string
	ruleReductionST  string
	ruleReductionOwn string
	ruleNotes        string
	ruleSource       string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage tax rules",
	Long: `Manage the NCM tax rule table used by calculations.

Examples:
  icmsst rules list
  icmsst rules get 73181500
  icmsst rules add --ncm 73181500 --description "fasteners" --kind st --mva-12 40 --mva-4 60
  icmsst rules remove 73181500
  icmsst rules import rules.json`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tax rules",
	RunE:  runRulesList,
}

var rulesGetCmd = &cobra.Command{
	Use:   "get <ncm>",
	Short: "Show the active rule for an NCM",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesGet,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a tax rule",
	RunE:  runRulesAdd,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <ncm>",
	Short: "Deactivate the rule for an NCM",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRemove,
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import rules from a JSON file",
	Long: `Import rules from a JSON array. Existing rules with the same
NCM are updated.

File format:
  [
    {"ncm": "73181500", "description": "fasteners", "kind": "st",
     "rate_12": "12", "rate_4": "4", "mva_12": "40", "mva_4": "60",
     "reduction_st": "0", "reduction_own": "0"}
  ]`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesImport,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesGetCmd, rulesAddCmd, rulesRemoveCmd, rulesImportCmd)

	rulesAddCmd.Flags().StringVar(&ruleNCM, "ncm", "", "NCM code (8 digits, dots allowed)")
	rulesAddCmd.Flags().StringVar(&ruleDescription, "description", "", "Rule description")
	rulesAddCmd.Flags().StringVar(&ruleKind, "kind", "st", "Taxation kind (st, taxed)")
	rulesAddCmd.Flags().StringVar(&ruleRate12, "rate-12", "12", "ICMS rate for the 12% bracket")
	rulesAddCmd.Flags().StringVar(&ruleRate4, "rate-4", "4", "ICMS rate for the 4% bracket")
	rulesAddCmd.Flags().StringVar(&ruleMVA12, "mva-12", "0", "Adjusted MVA for the 12% bracket")
	rulesAddCmd.Flags().StringVar(&ruleMVA4, "mva-4", "0", "Adjusted MVA for the 4% bracket")
	rulesAddCmd.Flags().StringVar(&ruleReductionST, "reduction-st", "0", "ST base reduction percent")
	rulesAddCmd.Flags().StringVar(&ruleReductionOwn, "reduction-own", "0", "Own base reduction percent")
	rulesAddCmd.Flags().StringVar(&ruleNotes, "notes", "", "Free-form notes")
	rulesAddCmd.Flags().StringVar(&ruleSource, "source", "", "Rule source reference")

	rulesAddCmd.MarkFlagRequired("ncm")
	rulesAddCmd.MarkFlagRequired("description")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rules, err := st.ListActive(context.Background())
	if err != nil {
		return err
	}

	if outputFormat == "table" {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NCM\tKIND\tMVA 12%\tMVA 4%\tRED ST\tRED OWN\tDESCRIPTION")
		fmt.Fprintln(tw, "---\t----\t-------\t------\t------\t-------\t-----------")
		for _, r := range rules {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.NCM, r.Kind,
				r.MVA12.StringFixed(2), r.MVA4.StringFixed(2),
				r.ReductionST.StringFixed(2), r.ReductionOwn.StringFixed(2),
				r.Description,
			)
		}
		return tw.Flush()
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rules)
}

func runRulesGet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ncm := fiscal.NormalizeNCM(args[0])
	rule, err := st.Lookup(context.Background(), ncm)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rule)
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	rule := model.TaxRule{
		NCM:         fiscal.NormalizeNCM(ruleNCM),
		Description: ruleDescription,
		Kind:        model.TaxationKind(ruleKind),
		Notes:       ruleNotes,
		Source:      ruleSource,
		Active:      true,
	}

	fields := []struct {
		dest *decimal.Decimal
		raw  string
		flag string
	}{
		{&rule.Rate12, ruleRate12, "rate-12"},
		{&rule.Rate4, ruleRate4, "rate-4"},
		{&rule.MVA12, ruleMVA12, "mva-12"},
		{&rule.MVA4, ruleMVA4, "mva-4"},
		{&rule.ReductionST, ruleReductionST, "reduction-st"},
		{&rule.ReductionOwn, ruleReductionOwn, "reduction-own"},
	}
	for _, f := range fields {
		parsed, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fmt.Errorf("--%s must be a number: %w", f.flag, err)
		}
		*f.dest = parsed
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveRule(context.Background(), rule); err != nil {
		return err
	}

	fmt.Printf("Saved rule for NCM %s\n", rule.NCM)
	return nil
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ncm := fiscal.NormalizeNCM(args[0])
	if err := st.DeactivateRule(context.Background(), ncm); err != nil {
		return err
	}

	fmt.Printf("Deactivated rule for NCM %s\n", ncm)
	return nil
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var rules []model.TaxRule
	if err := json.Unmarshal(content, &rules); err != nil {
		return fmt.Errorf("invalid rules file: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	imported := 0
	for _, rule := range rules {
		rule.NCM = fiscal.NormalizeNCM(rule.NCM)
		rule.Active = true
		if err := st.SaveRule(context.Background(), rule); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping NCM %s: %v\n", rule.NCM, err)
			continue
		}
		imported++
	}

	fmt.Printf("Imported %d of %d rules\n", imported, len(rules))
	return nil
}
