package payment

import (
	auditRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/repository"
	auditService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	catalogRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/catalog/repository"
	orderModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	orderRepo "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/repository"
	orderService "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/gateway"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/handler"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/config"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/storage"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PaymentModule owns the payment paths: manual transfer review and the
// gateway redirect flows.
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// Depends on order.
	return 30
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig

	gateways := map[string]gateway.Gateway{
		orderModel.ProviderManual: gateway.NewManualGateway(),
	}
	if cfg.PayPal.ClientID != "" && cfg.PayPal.Secret != "" {
		gateways[orderModel.ProviderPayPal] = gateway.NewPayPalGateway(
			cfg.PayPal.ClientID, cfg.PayPal.Secret, cfg.PayPal.APIBase, cfg.Currency.USDRate)
	} else {
		logger.Log.Warn("paypal credentials not configured; paypal checkout disabled")
	}
	if cfg.Stripe.SecretKey != "" {
		gateways[orderModel.ProviderStripe] = gateway.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.APIBase)
	} else {
		logger.Log.Warn("stripe credentials not configured; stripe checkout disabled")
	}

	var store storage.ObjectStore
	if s, err := storage.NewAliyunOSSStore(); err != nil {
		// Gateway payments still work without a bucket; proof upload
		// will reject until storage is configured.
		logger.Log.Warn("object storage not configured: " + err.Error())
	} else {
		store = s
	}

	oRepo := orderRepo.NewOrderRepository(ctx.DB)
	recorder := auditService.NewRecorder(auditRepo.NewAuditRepository(ctx.DB))
	orders := orderService.NewOrderService(oRepo, catalogRepo.NewCatalogRepository(ctx.DB), recorder)

	pService := service.NewPaymentService(
		repository.NewPaymentRepository(ctx.DB),
		orders, oRepo, gateways, store, recorder,
	)
	pHandler := handler.NewPaymentHandler(pService)

	setupRoutes(ctx.Router, pHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	pay := r.Group("/payments")
	{
		// Browser return points are reached by redirect, outside any
		// authenticated session.
		pay.GET("/paypal/capture", h.CapturePayPal)
		pay.GET("/stripe/capture", h.CaptureStripe)

		authed := pay.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/paypal/create-order", h.CreatePayPalOrder)
			authed.POST("/stripe/create-session", h.CreateStripeSession)
		}
	}

	proofs := r.Group("/orders")
	proofs.Use(middleware.AuthMiddleware())
	{
		proofs.POST("/:id/proof", h.SubmitProof)
	}

	admin := r.Group("/admin/payments")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/:id/approve", h.ApproveProof)
		admin.POST("/:id/reject", h.RejectProof)
		admin.GET("/order/:orderId", h.ListOrderProofs)
	}
}
