package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fiscalbr/icmsst/internal/export"
)

var (
	exportFormat string
	exportOutput string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved calculations",
	Long: `List saved calculations, newest first.

Examples:
  icmsst history
  icmsst history --limit 10 -f table`,
	RunE: runHistory,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved calculation",
	Long: `Export a saved calculation as CSV or PDF.

Examples:
  icmsst export 12 --export-format csv -o result.csv
  icmsst export 12 --export-format pdf -o result.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(historyCmd, exportCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum rows to list (default 50)")

	exportCmd.Flags().StringVar(&exportFormat, "export-format", "csv", "Export format (csv, pdf)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout for csv)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.ListCalculations(context.Background(), historyLimit)
	if err != nil {
		return err
	}

	if outputFormat == "table" {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tORIGIN\tINVOICE KEY\tITEMS\tST DUE\tCALCULATED AT")
		fmt.Fprintln(tw, "--\t------\t-----------\t-----\t------\t-------------")
		for _, row := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
				row.ID, row.Origin, row.InvoiceKey, row.ItemCount,
				row.TotalAmountDue, row.CalculatedAt,
			)
		}
		return tw.Flush()
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(list)
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid calculation id: %s", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.GetCalculation(context.Background(), uint(id))
	if err != nil {
		return err
	}

	var out []byte
	switch exportFormat {
	case "csv":
		out, err = export.CSV(result)
	case "pdf":
		out, err = export.PDF(result)
	default:
		return fmt.Errorf("unsupported export format: %s", exportFormat)
	}
	if err != nil {
		return err
	}

	if exportOutput == "" {
		if exportFormat == "pdf" {
			return fmt.Errorf("pdf export requires -o <file>")
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	if err := os.WriteFile(exportOutput, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}

	printVerbose("Wrote %d bytes to %s\n", len(out), exportOutput)
	return nil
}
