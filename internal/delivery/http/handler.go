package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/boozescore/backend/internal/domain"
	"github.com/boozescore/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalogService *usecase.CatalogService
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(catalogService *usecase.CatalogService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "boozescore-backend",
		"version": "1.0.0",
	})
}

// Ping handles GET /ping
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, "pong")
}

// View handles GET /api/v1/view
//
// Query parameters: country, category, search, is_new, single_only,
// sale_only, sort (comma separated or repeated, "-" prefix for
// descending), group and top.
func (h *Handler) View(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	req, err := parseViewRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view := h.catalogService.View(c.Request.Context(), req)
	if view.Status == usecase.LoadDegraded {
		h.logger.Warn("serving degraded view", zap.String("error", view.Error))
	}
	c.JSON(http.StatusOK, view)
}

// Categories handles GET /api/v1/categories
func (h *Handler) Categories(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	options, status := h.catalogService.Categories(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"categories": options,
		"status":     status,
	})
}

// Countries handles GET /api/v1/countries
func (h *Handler) Countries(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	countries, status := h.catalogService.Countries(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"countries": countries,
		"status":    status,
	})
}

// PriceHistory handles GET /api/v1/products/:sku/history
func (h *Handler) PriceHistory(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	sku := strings.TrimSpace(c.Param("sku"))
	series, err := h.catalogService.PriceHistory(c.Request.Context(), sku)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		default:
			h.logger.Error("price history failed", zap.String("sku", sku), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "catalog API temporarily unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, series)
}

// Reload handles POST /api/v1/reload by refetching the catalog
func (h *Handler) Reload(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	result := h.catalogService.Reload(c.Request.Context())
	if result.Status == usecase.LoadDegraded {
		h.logger.Warn("catalog reload failed", zap.String("error", result.Error))
	}
	c.JSON(http.StatusAccepted, result)
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.catalogService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "catalog service not configured",
		})
		return false
	}
	return true
}

func parseViewRequest(c *gin.Context) (usecase.ViewRequest, error) {
	var sortKeys []string
	for _, raw := range c.QueryArray("sort") {
		sortKeys = append(sortKeys, strings.Split(raw, ",")...)
	}
	sortSpec, err := domain.ParseSortSpec(sortKeys)
	if err != nil {
		return usecase.ViewRequest{}, err
	}

	groupBy, err := domain.ParseGroupField(c.Query("group"))
	if err != nil {
		return usecase.ViewRequest{}, err
	}

	var topN int
	if raw := c.Query("top"); raw != "" {
		topN, err = strconv.Atoi(raw)
		if err != nil || topN < 0 {
			return usecase.ViewRequest{}, errors.New("top must be a non-negative integer")
		}
	}

	return usecase.ViewRequest{
		Filter:  domain.FilterSpecFromValues(c.Request.URL.Query()),
		Sort:    sortSpec,
		GroupBy: groupBy,
		TopN:    topN,
	}, nil
}
