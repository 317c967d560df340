package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/features/payment/models"
	"nftclicks-backend/internal/features/payment/service"
)

type PaymentHandler struct {
	service service.PaymentService
	config  *config.Config
}

func NewPaymentHandler(service service.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		config:  cfg,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The gateway calls /verify directly, so it sits outside auth.
	router.POST("/verify", h.webhook)

	payments := router.Group("/payments")
	payments.Use(middleware.RequireAuth(h.config))
	{
		payments.POST("/activate", h.activate)
	}
}

// @Summary Payment gateway webhook
// @Description Records a captured payment after verifying the gateway signature
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /verify [post]
func (h *PaymentHandler) webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Failed to read webhook body"))
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.service.IngestWebhook(c.Request.Context(), body, signature); err != nil {
		c.Error(err)
		return
	}

	// The gateway retries anything but a 200.
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Activate or upgrade a plan
// @Description Consumes a payment reference and transitions the caller's tier
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.ActivateInput true "Payment reference"
// @Success 200 {object} models.ActivationResult
// @Failure 404 {object} middleware.AlertResponse
// @Failure 409 {object} middleware.AlertResponse
// @Router /payments/activate [post]
func (h *PaymentHandler) activate(c *gin.Context) {
	var input models.ActivateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("transaction_id", "Transaction ID is required"))
		return
	}

	result, err := h.service.Activate(c.Request.Context(), middleware.UserEmail(c), input.TransactionID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
