package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/musicbridge/musicbridge/api/handlers"
	"github.com/musicbridge/musicbridge/api/middleware"
	"github.com/musicbridge/musicbridge/internal/app"
	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/musicbridge/musicbridge/internal/observability"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	batches *app.BatchService,
	metrics *observability.Metrics,
	config *domain.Config,
	log *zap.Logger,
) *gin.Engine {
	if config.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(cors.New(corsConfig(config.Server.CORSOrigins)))
	router.Use(metrics.Middleware())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(batches)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	downloadHandler := handlers.NewDownloadHandler(batches, config.Download.ArchiveName, log)
	router.POST("/download", downloadHandler.Download)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		batchHandler := handlers.NewBatchHandler(batches, log)
		history := v1.Group("/batches")
		{
			history.GET("", batchHandler.ListBatches)
			history.GET("/stats", batchHandler.GetStats)
			history.GET("/:id", batchHandler.GetBatch)
			history.DELETE("/:id", batchHandler.DeleteBatch)
		}

		logHandler := handlers.NewLogHandler(config.Logging.LogsDir)
		logs := v1.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
			logs.GET("/:category/search", logHandler.SearchLogs)
			logs.GET("/:category/export", logHandler.ExportLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{handlers.HeaderBatchID, handlers.HeaderTracksFetched, handlers.HeaderTracksFailed, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || lo.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}
