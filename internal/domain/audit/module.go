package audit

import (
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/handler"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// AuditModule exposes the admin audit trail.
type AuditModule struct{}

func init() {
	registry.Register(&AuditModule{})
}

func (m *AuditModule) Name() string {
	return "audit"
}

func (m *AuditModule) Priority() int {
	return 5
}

func (m *AuditModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewAuditRepository(ctx.DB)
	recorder := service.NewRecorder(repo)
	h := handler.NewAuditHandler(recorder)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.AuditHandler) {
	g := r.Group("/admin/audit")
	g.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		g.GET("", h.GetEntries)
	}
}
