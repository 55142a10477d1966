// Package server exposes the ICMS-ST calculator over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fiscalbr/icmsst/internal/calc"
	"github.com/fiscalbr/icmsst/internal/export"
	"github.com/fiscalbr/icmsst/internal/fiscal"
	"github.com/fiscalbr/icmsst/internal/model"
	"github.com/fiscalbr/icmsst/internal/store"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	engine *calc.Engine
	store  *store.Store
	log    *zap.Logger
}

// NewServer creates a new API server. The store backs both rule
// management and calculation history.
func NewServer(config *Config, st *store.Store, log *zap.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		engine: calc.NewEngine(st, log),
		store:  st,
		log:    log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Calculation endpoints
		v1.POST("/calculate/xml", s.handleCalculateXML)
		v1.POST("/calculate/manual", s.handleCalculateManual)

		// Rule management
		v1.GET("/rules", s.handleListRules)
		v1.POST("/rules", s.handleSaveRule)
		v1.GET("/rules/:ncm", s.handleGetRule)
		v1.DELETE("/rules/:ncm", s.handleDeactivateRule)

		// Calculation history
		v1.GET("/calculations", s.handleListCalculations)
		v1.GET("/calculations/:id", s.handleGetCalculation)
		v1.GET("/calculations/:id/export", s.handleExportCalculation)

		// Stats endpoint
		v1.GET("/stats", s.handleStats)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCalculateXML(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	extraFreight := decimal.Zero
	if raw := c.Query("extra_freight"); raw != "" {
		extraFreight, err = decimal.NewFromString(raw)
		if err != nil || extraFreight.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "extra_freight must be a non-negative number"})
			return
		}
	}

	result, err := s.engine.CalculateXML(c.Request.Context(), body, extraFreight)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.respondCalculation(c, result)
}

func (s *Server) handleCalculateManual(c *gin.Context) {
	var req ManualCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one item is required"})
		return
	}

	extraFreight := decimal.Zero
	if req.ExtraFreight != "" {
		var err error
		extraFreight, err = decimal.NewFromString(req.ExtraFreight)
		if err != nil || extraFreight.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "extra_freight must be a non-negative number"})
			return
		}
	}

	result, err := s.engine.CalculateManual(c.Request.Context(), req.Items, extraFreight)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.respondCalculation(c, result)
}

// respondCalculation persists the result and returns it with the
// assigned history ID. Persistence failures degrade to an unsaved
// response instead of failing the calculation.
func (s *Server) respondCalculation(c *gin.Context, result *model.GeneralResult) {
	var id uint
	saved, err := s.store.SaveCalculation(c.Request.Context(), result)
	if err != nil {
		s.log.Warn("failed to persist calculation", zap.Error(err))
	} else {
		id = saved
	}

	c.JSON(http.StatusOK, CalculationResponse{
		ID:     id,
		Saved:  err == nil,
		Result: result,
	})
}

func (s *Server) handleListRules(c *gin.Context) {
	rules, err := s.store.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, RulesResponse{Rules: rules, Count: len(rules)})
}

func (s *Server) handleSaveRule(c *gin.Context) {
	var rule model.TaxRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rule.NCM = fiscal.NormalizeNCM(rule.NCM)
	rule.Active = true

	if err := s.store.SaveRule(c.Request.Context(), rule); err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ncm": rule.NCM, "status": "saved"})
}

func (s *Server) handleGetRule(c *gin.Context) {
	ncm := fiscal.NormalizeNCM(c.Param("ncm"))

	rule, err := s.store.Lookup(c.Request.Context(), ncm)
	if errors.Is(err, calc.ErrRuleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active rule for NCM " + ncm})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (s *Server) handleDeactivateRule(c *gin.Context) {
	ncm := fiscal.NormalizeNCM(c.Param("ncm"))

	err := s.store.DeactivateRule(c.Request.Context(), ncm)
	if errors.Is(err, calc.ErrRuleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active rule for NCM " + ncm})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ncm": ncm, "status": "deactivated"})
}

func (s *Server) handleListCalculations(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	list, err := s.store.ListCalculations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CalculationsResponse{Calculations: list, Count: len(list)})
}

func (s *Server) handleGetCalculation(c *gin.Context) {
	id, ok := s.calculationID(c)
	if !ok {
		return
	}

	result, err := s.store.GetCalculation(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "calculation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleExportCalculation(c *gin.Context) {
	id, ok := s.calculationID(c)
	if !ok {
		return
	}

	result, err := s.store.GetCalculation(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "calculation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		out, err := export.CSV(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="calculation.csv"`)
		c.Data(http.StatusOK, "text/csv", out)

	case "pdf":
		out, err := export.PDF(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="calculation.pdf"`)
		c.Data(http.StatusOK, "application/pdf", out)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or pdf"})
	}
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) calculationID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid calculation id"})
		return 0, false
	}
	return uint(id), true
}
