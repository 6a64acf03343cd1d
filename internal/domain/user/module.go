package user

import (
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user/handler"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule provides accounts and session tokens.
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// Other modules depend on authentication; initialize first.
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	userRepo := repository.NewUserRepository(ctx.DB)
	limiter := service.NewRedisAttemptLimiter(ctx.Redis, 10, 15*time.Minute)
	userService := service.NewUserService(userRepo, limiter)
	userHandler := handler.NewUserHandler(userService)

	setupRoutes(ctx.Router, userHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	me := r.Group("/auth")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("/me", h.Me)
	}
}
