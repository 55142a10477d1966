package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fiscalbr/icmsst/internal/store"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	dbPath       string
)

var rootCmd = &cobra.Command{
	Use:   "icmsst",
	Short: "Calculate ICMS-ST for Brazilian NFe invoices",
	Long: `icmsst calculates ICMS tax substitution (ICMS-ST) amounts for
Brazilian electronic invoices (NFe).

Tax rules are looked up by NCM code from a local SQLite database.
Calculations can come from an NFe XML file or from manually entered
items, and results are persisted for later export as CSV or PDF.

Examples:
  # Calculate from an NFe XML file
  icmsst calculate nota.xml

  # Calculate with extra freight apportioned across items
  icmsst calculate nota.xml --freight 150.00

  # Calculate from manually entered items
  icmsst calculate --manual items.json

  # Manage tax rules
  icmsst rules list
  icmsst rules add --ncm 73181500 --description "fasteners" --kind st --mva-12 40

  # Start the HTTP API
  icmsst serve`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (env: ICMSST_DB)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if dbPath == "" {
		dbPath = os.Getenv("ICMSST_DB")
	}
	if dbPath == "" {
		dbPath = "icmsst.db"
	}
}

func openStore() (*store.Store, error) {
	return openStoreAt(dbPath)
}

func openStoreAt(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return st, nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
