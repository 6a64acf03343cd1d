package order

import (
	auditRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/repository"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	catalogRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/handler"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule owns the order lifecycle.
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// Depends on user and catalog.
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	oRepo := repository.NewOrderRepository(ctx.DB)
	cRepo := catalogRepo.NewCatalogRepository(ctx.DB)
	recorder := auditService.NewRecorder(auditRepo.NewAuditRepository(ctx.DB))

	oService := service.NewOrderService(oRepo, cRepo, recorder)
	oHandler := handler.NewOrderHandler(oService)

	setupRoutes(ctx.Router, oHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.CreateOrder)
		g.GET("", h.ListOrders)
		g.GET("/:id", h.GetOrder)
		g.POST("/:id/payment-method", h.ChangePaymentMethod)
		g.POST("/:id/cancel", h.CancelOrder)
	}

	admin := r.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/:id/fulfill", h.FulfillOrder)
		admin.POST("/:id/refund", h.RefundOrder)
	}
}
