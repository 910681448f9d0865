package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"viralacademy.com/academy/internal/middleware"
	billing "viralacademy.com/academy/internal/modules/billing/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/response"
)

const maxWebhookBytes = 64 << 10

type BillingHandler struct {
	service billing.BillingService
}

func NewBillingHandler(service billing.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	resp, err := h.service.Checkout(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *BillingHandler) Portal(c *gin.Context) {
	resp, err := h.service.Portal(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *BillingHandler) GetSubscription(c *gin.Context) {
	resp, err := h.service.GetSubscription(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, resp)
}

// Webhook needs the raw body for signature verification.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.ResponseError(c, apperror.Validation("unable to read request body"))
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
