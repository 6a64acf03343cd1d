package catalog

import (
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/handler"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/storage"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CatalogModule provides products and their digital assets.
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 10
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCatalogRepository(ctx.DB)

	var store storage.ObjectStore
	if s, err := storage.NewAliyunOSSStore(); err != nil {
		// Catalog browsing still works without a bucket; asset upload
		// will reject until storage is configured.
		logger.Log.Warn("object storage not configured: " + err.Error())
	} else {
		store = s
	}

	h := handler.NewCatalogHandler(repo, store)
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	r.GET("/products", h.ListProducts)

	admin := r.Group("/admin/products")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateProduct)
		admin.POST("/:id/asset", h.AttachAsset)
	}
}
