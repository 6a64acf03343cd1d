package download

import (
	"time"

	auditRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/repository"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	catalogRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/download/handler"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/download/service"
	orderRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/config"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/storage"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/signer"

	"github.com/gin-gonic/gin"
)

// DownloadModule serves entitled assets through signed expiring links.
type DownloadModule struct{}

func init() {
	registry.Register(&DownloadModule{})
}

func (m *DownloadModule) Name() string {
	return "download"
}

func (m *DownloadModule) Priority() int {
	// Depends on catalog and order.
	return 40
}

func (m *DownloadModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig

	var store storage.ObjectStore
	if s, err := storage.NewAliyunOSSStore(); err != nil {
		logger.Log.Warn("object storage not configured: " + err.Error())
	} else {
		store = s
	}

	recorder := auditService.NewRecorder(auditRepo.NewAuditRepository(ctx.DB))
	dService := service.NewDownloadService(
		catalogRepo.NewCatalogRepository(ctx.DB),
		orderRepo.NewOrderRepository(ctx.DB),
		store,
		signer.New(cfg.Download.HMACSecret),
		time.Duration(cfg.Download.TTLHours)*time.Hour,
		recorder,
	)
	dHandler := handler.NewDownloadHandler(dService)

	setupRoutes(ctx.Router, dHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.DownloadHandler) {
	// The file endpoint authenticates by signature alone so links work
	// outside the session that requested them.
	r.GET("/downloads/file", h.ServeFile)

	g := r.Group("/downloads")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("/:assetId", h.RequestDownload)
	}
}
