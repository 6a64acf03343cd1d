package handler

import (
	"net/http"
	"net/url"

	orderModel "github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/order/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/payment/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/response"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type CheckoutInput struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreatePayPalOrder opens a PayPal checkout for an order.
// @Summary Create PayPal order
// @Tags Payment
// @Accept json
// @Produce json
// @Router /payments/paypal/create-order [post]
func (h *PaymentHandler) CreatePayPalOrder(c *gin.Context) {
	h.startCheckout(c, orderModel.ProviderPayPal, "/payments/paypal/capture", "token")
}

// CreateStripeSession opens a Stripe Checkout session for an order.
// @Summary Create Stripe session
// @Tags Payment
// @Accept json
// @Produce json
// @Router /payments/stripe/create-session [post]
func (h *PaymentHandler) CreateStripeSession(c *gin.Context) {
	h.startCheckout(c, orderModel.ProviderStripe, "/payments/stripe/capture", "")
}

func (h *PaymentHandler) startCheckout(c *gin.Context, provider, capturePath, tokenParam string) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	base := utils.BaseURL(c)
	returnURL := base + capturePath + "?orderId=" + url.QueryEscape(input.OrderID)
	if tokenParam == "" {
		// Stripe substitutes the session id itself.
		returnURL += "&session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := base + "/payment/cancelled?orderId=" + url.QueryEscape(input.OrderID)

	result, err := h.service.StartCheckout(c.Request.Context(), middleware.UserID(c), input.OrderID, provider, returnURL, cancelURL)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// CapturePayPal is PayPal's browser return point. The customer lands
// here after approving, so the reply is a redirect, never JSON.
// @Summary Capture PayPal payment
// @Tags Payment
// @Router /payments/paypal/capture [get]
func (h *PaymentHandler) CapturePayPal(c *gin.Context) {
	h.captureReturn(c, orderModel.ProviderPayPal, c.Query("token"))
}

// CaptureStripe is Stripe's browser return point.
// @Summary Capture Stripe payment
// @Tags Payment
// @Router /payments/stripe/capture [get]
func (h *PaymentHandler) CaptureStripe(c *gin.Context) {
	h.captureReturn(c, orderModel.ProviderStripe, c.Query("session_id"))
}

func (h *PaymentHandler) captureReturn(c *gin.Context, provider, token string) {
	orderID := c.Query("orderId")
	base := utils.BaseURL(c)

	order, err := h.service.CaptureReturn(c.Request.Context(), provider, token, orderID)
	if err != nil {
		if logger.Log != nil {
			logger.Log.Warn("gateway capture failed",
				zap.String("provider", provider),
				zap.String("orderId", orderID),
				zap.Error(err),
			)
		}
		c.Redirect(http.StatusFound, base+"/payment/failed?orderId="+url.QueryEscape(orderID))
		return
	}

	c.Redirect(http.StatusFound, base+"/payment/success?orderId="+url.QueryEscape(order.ID))
}

// SubmitProof uploads bank-transfer evidence for an order.
// @Summary Submit payment proof
// @Tags Payment
// @Accept multipart/form-data
// @Produce json
// @Router /orders/{id}/proof [post]
func (h *PaymentHandler) SubmitProof(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "proof file is required")
		return
	}

	proof, err := h.service.SubmitProof(c.Request.Context(), middleware.UserID(c), c.Param("id"), file, c.PostForm("note"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, proof)
}

// ApproveProof settles a bank transfer (admin).
// @Summary Approve payment proof
// @Tags Admin
// @Produce json
// @Router /admin/payments/{id}/approve [post]
func (h *PaymentHandler) ApproveProof(c *gin.Context) {
	proof, err := h.service.ApproveProof(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, proof)
}

type RejectProofInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectProof sends a bank transfer back to the customer (admin).
// @Summary Reject payment proof
// @Tags Admin
// @Accept json
// @Produce json
// @Router /admin/payments/{id}/reject [post]
func (h *PaymentHandler) RejectProof(c *gin.Context) {
	var input RejectProofInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	proof, err := h.service.RejectProof(c.Request.Context(), middleware.UserID(c), c.Param("id"), input.Reason)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, proof)
}

// ListOrderProofs shows an order's proof history (admin).
// @Summary List payment proofs
// @Tags Admin
// @Produce json
// @Router /admin/payments/order/{orderId} [get]
func (h *PaymentHandler) ListOrderProofs(c *gin.Context) {
	proofs, err := h.service.ListProofs(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, proofs)
}
