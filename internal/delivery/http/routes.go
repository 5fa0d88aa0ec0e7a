package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/boozescore/backend/config"
)

// SetupRouter creates and configures the Gin router.
// metricsHandler is mounted at /metrics when non-nil.
func SetupRouter(cfg *config.Config, handler *Handler, metricsHandler http.Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)
	router.GET("/ping", handler.Ping)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/view", handler.View)
		v1.GET("/categories", handler.Categories)
		v1.GET("/countries", handler.Countries)
		v1.GET("/products/:sku/history", handler.PriceHistory)
		v1.POST("/reload", handler.Reload)
	}

	return router
}
