package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/metrics", handler.Metrics)

		products := v1.Group("/products")
		{
			products.POST("/features", handler.ExtractFeatures)
			products.POST("/stats", handler.ProductStats)
			products.POST("/analyze", handler.AnalyzeProducts)
			products.POST("/duplicates", handler.FindDuplicates)
			products.POST("/similar", handler.FindSimilar)
			products.POST("/recommendations", handler.Recommendations)
		}

		similarity := v1.Group("/similarity")
		{
			similarity.POST("/compare", handler.CompareSimilarity)
			similarity.POST("/embedding", handler.CompareEmbedding)
		}
	}

	return router
}
