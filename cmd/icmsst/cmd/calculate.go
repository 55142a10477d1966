package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/export"
	"github.com/fiscalbr/icmsst/internal/model"
)

var (
	extraFreight string
	manualFile   string
	outputFile   string
	saveResult   bool
	calcTimeout  time.Duration
)

var calculateCmd = &cobra.Command{
	Use:   "calculate [nfe.xml]",
	Short: "Calculate ICMS-ST for an invoice",
	Long: `Calculate ICMS-ST amounts for every item of an invoice.

Input is either an NFe XML file or a JSON file of manual items
(via --manual). Extra freight not present on the invoice can be
added with --freight; it is apportioned across items by value.

The manual items file is a JSON array:
  [
    {"code": "P1", "description": "hex bolt", "ncm": "7318.15.00",
     "quantity": "100", "unit_price": "1.50", "ipi": "0", "freight": "0"}
  ]

Examples:
  icmsst calculate nota.xml
  icmsst calculate nota.xml --freight 150.00 -f table
  icmsst calculate --manual items.json -o result.json
  icmsst calculate nota.xml --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCalculate,
}

func init() {
	rootCmd.AddCommand(calculateCmd)

	calculateCmd.Flags().StringVar(&extraFreight, "freight", "", "Extra freight to apportion across items")
	calculateCmd.Flags().StringVar(&manualFile, "manual", "", "JSON file with manually entered items")
	calculateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	calculateCmd.Flags().BoolVar(&saveResult, "save", false, "Persist the result in the database")
	calculateCmd.Flags().DurationVar(&calcTimeout, "timeout", 30*time.Second, "Calculation timeout")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && manualFile == "" {
		return fmt.Errorf("provide an NFe XML file or --manual items file")
	}
	if len(args) > 0 && manualFile != "" {
		return fmt.Errorf("use either an XML file or --manual, not both")
	}

	freight := decimal.Zero
	if extraFreight != "" {
		parsed, err := decimal.NewFromString(extraFreight)
		if err != nil || parsed.IsNegative() {
			return fmt.Errorf("--freight must be a non-negative number")
		}
		freight = parsed
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	engine := calc.NewEngine(st, nil)

	ctx, cancel := context.WithTimeout(context.Background(), calcTimeout)
	defer cancel()

	var result *model.GeneralResult
	if manualFile != "" {
		printVerbose("Reading manual items from %s\n", manualFile)
		result, err = calculateManual(ctx, engine, manualFile, freight)
	} else {
		printVerbose("Reading NFe XML from %s\n", args[0])
		result, err = calculateXML(ctx, engine, args[0], freight)
	}
	if err != nil {
		return err
	}

	if saveResult {
		id, err := st.SaveCalculation(ctx, result)
		if err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		printVerbose("Saved calculation with id %d\n", id)
	}

	return outputResult(result)
}

func calculateXML(ctx context.Context, engine *calc.Engine, path string, freight decimal.Decimal) (*model.GeneralResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return engine.CalculateXML(ctx, content, freight)
}

func calculateManual(ctx context.Context, engine *calc.Engine, path string, freight decimal.Decimal) (*model.GeneralResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rows []calc.ManualItem
	if err := json.Unmarshal(content, &rows); err != nil {
		return nil, fmt.Errorf("invalid manual items file: %w", err)
	}

	return engine.CalculateManual(ctx, rows, freight)
}

func outputResult(result *model.GeneralResult) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)

	case "csv":
		out, err := export.CSV(result)
		if err != nil {
			return err
		}
		_, err = writer.Write(out)
		return err

	case "table":
		return outputResultTable(writer, result)

	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputResultTable(w *os.File, result *model.GeneralResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tDESCRIPTION\tNCM\tKIND\tTOTAL\tST BASE\tST DUE\tUNIT COST\tRULE")
	fmt.Fprintln(tw, "----\t-----------\t---\t----\t-----\t-------\t------\t---------\t----")

	for _, item := range result.Items {
		rule := "no"
		if item.RuleFound {
			rule = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Code,
			item.Description,
			item.NCM,
			item.Kind,
			item.TotalValue.StringFixed(2),
			item.STBase.StringFixed(2),
			item.AmountDue.StringFixed(2),
			item.FinalUnitCost.StringFixed(2),
			rule,
		)
	}

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Items:\t%d\n", result.ItemCount)
	fmt.Fprintf(tw, "Total value:\t%s\n", result.TotalValue.StringFixed(2))
	fmt.Fprintf(tw, "Total ST due:\t%s\n", result.TotalAmountDue.StringFixed(2))
	fmt.Fprintf(tw, "Total final cost:\t%s\n", result.TotalFinalCost.StringFixed(2))

	for _, note := range result.Notes {
		fmt.Fprintf(tw, "Note:\t%s\n", note)
	}

	return tw.Flush()
}
