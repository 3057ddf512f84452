package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/api"
	"github.com/jengzang/resourcemap-backend-go/internal/cache"
	"github.com/jengzang/resourcemap-backend-go/internal/config"
	"github.com/jengzang/resourcemap-backend-go/internal/database"
	"github.com/jengzang/resourcemap-backend-go/internal/heatmap"
	"github.com/jengzang/resourcemap-backend-go/internal/repository"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(rt *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rt.cfg, rt.logger)
		},
	}
}

// newEngine builds a raster engine from the heatmap config section
func newEngine(cfg config.HeatmapConfig, logger *zap.Logger) *heatmap.Engine {
	return heatmap.NewEngine(
		heatmap.WithMaxResolution(cfg.MaxResolution),
		heatmap.WithWorkers(cfg.Workers),
		heatmap.WithLogger(logger.Named("engine")),
	)
}

// newCache connects the redis raster cache, falling back to no caching
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.RasterCache {
	if cfg.Cache.RedisAddr == "" || cfg.Heatmap.CacheTTL == 0 {
		return cache.Noop{}
	}
	rc, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		TTL:      cfg.Heatmap.CacheTTL,
	}, logger)
	if err != nil {
		logger.Warn("raster cache disabled", zap.Error(err))
		return cache.Noop{}
	}
	return rc
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if strings.ToLower(cfg.Log.Level) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.Database.Path}, logger); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db := database.GetDB()

	markers := repository.NewMarkerRepository(db)
	schemas := repository.NewSchemaRepository(db)

	rc := newCache(ctx, cfg, logger)
	if closer, ok := rc.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	heatmapService := service.NewHeatmapService(markers, schemas, newEngine(cfg.Heatmap, logger), rc, logger)
	services := api.Services{
		Heatmap: heatmapService,
		Markers: service.NewMarkerService(markers, logger),
		Schemas: service.NewSchemaService(schemas, logger),
	}

	// 初始化路由
	router, limiter := api.SetupRouter(cfg, services, logger)
	if limiter != nil {
		defer limiter.Stop()
	}

	if cfg.File != "" {
		go func() {
			err := config.Watch(ctx, cfg.File, logger, func(next *config.Config) {
				heatmapService.SetEngine(newEngine(next.Heatmap, logger))
				logger.Info("heatmap limits updated",
					zap.Int("max_resolution", next.Heatmap.MaxResolution),
					zap.Int("workers", next.Heatmap.Workers))
			})
			if err != nil {
				logger.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
