package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/config"
	"github.com/jengzang/resourcemap-backend-go/internal/handler"
	"github.com/jengzang/resourcemap-backend-go/internal/middleware"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
)

// Services are the dependencies the routes are served by
type Services struct {
	Heatmap *service.HeatmapService
	Markers *service.MarkerService
	Schemas *service.SchemaService
}

// SetupRouter 设置路由. The returned limiter, if any, must be stopped on shutdown.
func SetupRouter(cfg *config.Config, svc Services, logger *zap.Logger) (*gin.Engine, *middleware.RateLimiter) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+handler.SessionHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Raster-Bounds")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Resource Map API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	auth := middleware.JWTAuth(cfg.Auth.JWTSecret)

	heatmapHandler := handler.NewHeatmapHandler(svc.Heatmap)
	markerHandler := handler.NewMarkerHandler(svc.Markers)
	schemaHandler := handler.NewSchemaHandler(svc.Schemas)

	// API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/heatmap/options", heatmapHandler.Options)

		api.GET("/datasets", markerHandler.Datasets)

		// 数据集: markers and rasters
		datasets := api.Group("/datasets/:dataset")
		{
			datasets.GET("/markers", markerHandler.List)
			datasets.GET("/markers/:id", markerHandler.Get)
			datasets.POST("/markers", auth, markerHandler.Create)
			datasets.PUT("/markers/:id", auth, markerHandler.Update)
			datasets.DELETE("/markers/:id", auth, markerHandler.Delete)

			datasets.POST("/heatmap", middleware.RateLimit(limiter), heatmapHandler.Generate)
			datasets.POST("/heatmap.png", middleware.RateLimit(limiter), heatmapHandler.GeneratePNG)
		}

		// 分类 schema
		schemas := api.Group("/schemas")
		{
			schemas.GET("", schemaHandler.List)
			schemas.GET("/:project", schemaHandler.Get)
			schemas.PUT("/:project", auth, schemaHandler.Put)
			schemas.GET("/:project/selectors", schemaHandler.Selectors)
		}
	}

	return r, limiter
}
