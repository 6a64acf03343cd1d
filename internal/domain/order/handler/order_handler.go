package handler

import (
	"net/http"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/response"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type CreateOrderInput struct {
	Items []struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1"`
	PaymentMethod string `json:"paymentMethod"`
}

// CreateOrder starts a checkout.
// @Summary Create order
// @Tags Order
// @Accept json
// @Produce json
// @Param input body CreateOrderInput true "Order lines"
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	lines := make([]service.LineInput, 0, len(input.Items))
	for _, it := range input.Items {
		lines = append(lines, service.LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.service.Create(c.Request.Context(), middleware.UserID(c), lines, input.PaymentMethod)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrder returns one of the caller's orders.
// @Summary Get order
// @Tags Order
// @Produce json
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetForUser(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders lists the caller's orders.
// @Summary List orders
// @Tags Order
// @Produce json
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	offset, limit := utils.Pagination(c)

	orders, total, err := h.service.ListForUser(c.Request.Context(), middleware.UserID(c), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"orders": orders, "total": total})
}

type ChangeMethodInput struct {
	NewMethod string `json:"newMethod" binding:"required"`
}

// ChangePaymentMethod switches the payment path while the order is
// still payable.
// @Summary Change payment method
// @Tags Order
// @Accept json
// @Produce json
// @Router /orders/{id}/payment-method [post]
func (h *OrderHandler) ChangePaymentMethod(c *gin.Context) {
	var input ChangeMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.ChangePaymentMethod(c.Request.Context(), middleware.UserID(c), c.Param("id"), input.NewMethod)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder cancels an unpaid order.
// @Summary Cancel order
// @Tags Order
// @Produce json
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, nil)
}

// FulfillOrder marks a paid order fulfilled (admin).
// @Summary Fulfill order
// @Tags Admin
// @Produce json
// @Router /admin/orders/{id}/fulfill [post]
func (h *OrderHandler) FulfillOrder(c *gin.Context) {
	if err := h.service.Fulfill(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, nil)
}

// RefundOrder marks a paid order refunded (admin, ledger only).
// @Summary Refund order
// @Tags Admin
// @Produce json
// @Router /admin/orders/{id}/refund [post]
func (h *OrderHandler) RefundOrder(c *gin.Context) {
	if err := h.service.Refund(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, nil)
}
