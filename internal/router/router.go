// Package router assembles the gin.Engine: global middleware, health/ready/
// metrics scaffolding, and the read-side route tree over the
// stats/rankings/internal handlers. Kept thin — it wires, it doesn't decide.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/handlers"
	"github.com/clipdeck/statistics-service/internal/middleware"
	"github.com/clipdeck/statistics-service/pkg/db"
	"github.com/clipdeck/statistics-service/pkg/logger"
	"github.com/clipdeck/statistics-service/pkg/metrics"
)

// Handlers bundles every handler New wires into the route tree, built by
// the composition root.
type Handlers struct {
	Stats    *handlers.StatsHandler
	Rankings *handlers.RankingsHandler
	Internal *handlers.InternalHandler
}

// New creates a new Gin router with all routes and middleware configured.
func New(cfg *config.Config, log *logger.Logger, database *db.DB, m *metrics.Metrics, h Handlers) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middleware.RateLimiter())
	r.Use(middleware.SecurityHeaders())
	r.Use(m.HTTPMiddleware())

	r.GET("/health", handlers.HealthCheck(database))
	r.GET("/ready", handlers.ReadinessCheck(database))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Environment != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	stats := r.Group("/stats")
	{
		stats.GET("/:clipId", h.Stats.GetClipStats)
		stats.POST("/refresh/:clipId", middleware.JWTAuth(cfg.JWTSecret), h.Stats.RefreshClipStats)
		stats.POST("/batch-refresh", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("staff"), h.Stats.BatchRefreshStats)
	}

	rankings := r.Group("/rankings")
	{
		rankings.GET("/weekly-clips", h.Rankings.GetWeeklyClipRankings)
		rankings.GET("/weekly-campaigns", h.Rankings.GetWeeklyCampaignRankings)
		rankings.POST("/calculate", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("staff"), h.Rankings.CalculateRankings)
	}

	internalGroup := r.Group("/internal")
	internalGroup.Use(middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("staff"))
	{
		internalGroup.POST("/events/dead-letter/:id/retry", h.Internal.RetryDeadLetter)
		internalGroup.GET("/botdetect/thresholds", h.Internal.GetBotDetectionThresholds)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "The requested resource was not found",
			"path":    c.Request.URL.Path,
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "The requested method is not allowed for this resource",
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
		})
	})

	return r
}
