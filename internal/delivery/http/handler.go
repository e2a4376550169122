package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fliplens/backend/config"
	"github.com/fliplens/backend/internal/domain"
	"github.com/fliplens/backend/internal/usecase"
)

// ArbitrageFinder is the usecase surface consumed by the handler
type ArbitrageFinder interface {
	FindOpportunities(ctx context.Context, query domain.ArbitrageQuery) (*domain.ArbitragePayload, *usecase.RequestStats, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	finder ArbitrageFinder
	budget config.BudgetConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(finder ArbitrageFinder, budget config.BudgetConfig) *Handler {
	return &Handler{
		finder: finder,
		budget: budget,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fliplens-backend",
		"version": "1.0.0",
	})
}

// GetArbitrage handles arbitrage opportunity requests.
// Query parameters are clamped to the configured hard caps; malformed
// values silently fall back to defaults rather than erroring.
func (h *Handler) GetArbitrage(c *gin.Context) {
	query := domain.ArbitrageQuery{
		Top:        clampedIntParam(c, "top", h.budget.DefaultTop, h.budget.MaxTop),
		SeedCap:    clampedIntParam(c, "seeds", h.budget.DefaultSeeds, h.budget.MaxSeeds),
		PerSeed:    clampedIntParam(c, "perSeed", h.budget.DefaultPerSeed, h.budget.MaxPerSeed),
		EbayBudget: clampedIntParam(c, "ebayBudget", h.budget.DefaultEbayCalls, h.budget.MaxEbayCalls),
		Category:   c.Query("category"),
		MinProfit:  floatParam(c, "minProfit", 0),
		Debug:      c.Query("debug") == "1",
	}

	payload, stats, err := h.finder.FindOpportunities(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backend error"})
		return
	}

	if stats.CacheHit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Header("X-AliExpress-Calls", fmt.Sprintf("%d", stats.AliCalls))
	c.Header("X-eBay-Calls", fmt.Sprintf("%d", stats.EbayCalls))

	c.JSON(http.StatusOK, payload)
}

// clampedIntParam parses an int query parameter, falling back to the
// default on absence or garbage and clamping to the hard cap.
func clampedIntParam(c *gin.Context, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// floatParam parses a float query parameter with a fallback default
func floatParam(c *gin.Context, name string, def float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}
