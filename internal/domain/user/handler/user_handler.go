package handler

import (
	"net/http"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a customer account.
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "Account Info"
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), input.Email, input.Password, input.Name)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Login exchanges credentials for a session token.
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Credentials"
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, token, expiresAt, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Me returns the authenticated user's profile.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Router /auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}
