package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/config"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/database"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"

	// Domain modules self-register through their init functions.
	_ "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit"
	_ "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog"
	_ "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/download"
	_ "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order"
	_ "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment"
	_ "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	logger.Init(cfg.App.Debug)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(),
		cors.Default(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	moduleCtx := &registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: router,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		log.Fatalf("Failed to initialize modules: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
