package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscalbr/icmsst/internal/config"
	"github.com/fiscalbr/icmsst/internal/logger"
	"github.com/fiscalbr/icmsst/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for ICMS-ST calculations.

The API provides endpoints for:
  - POST   /api/v1/calculate/xml           - Calculate from NFe XML
  - POST   /api/v1/calculate/manual        - Calculate from manual items
  - GET    /api/v1/rules                   - List active rules
  - POST   /api/v1/rules                   - Add or update a rule
  - GET    /api/v1/rules/:ncm              - Get a rule
  - DELETE /api/v1/rules/:ncm              - Deactivate a rule
  - GET    /api/v1/calculations            - List calculation history
  - GET    /api/v1/calculations/:id        - Get a calculation
  - GET    /api/v1/calculations/:id/export - Export as CSV or PDF
  - GET    /api/v1/stats                   - Database stats
  - GET    /health                         - Health check

Examples:
  # Start server with defaults from the environment
  icmsst serve

  # Start on a custom port in debug mode
  icmsst serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from env)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from env)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from env)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if serverAddr != "" {
		cfg.Address = serverAddr
	}
	if readTimeout > 0 {
		cfg.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		cfg.WriteTimeout = writeTimeout
	}
	if serverDebug {
		cfg.Debug = true
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStoreAt(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.NewServer(&server.Config{
		Address:      cfg.Address,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Debug:        cfg.Debug,
	}, st, log)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		st.Close()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (db: %s)\n", cfg.Address, cfg.DBPath)
	return srv.Run()
}
