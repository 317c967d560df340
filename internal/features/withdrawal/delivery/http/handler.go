package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/common/validation"
	"nftclicks-backend/internal/features/withdrawal/models"
	"nftclicks-backend/internal/features/withdrawal/service"
)

type WithdrawalHandler struct {
	service service.WithdrawalService
	config  *config.Config
}

func NewWithdrawalHandler(service service.WithdrawalService, cfg *config.Config) *WithdrawalHandler {
	return &WithdrawalHandler{
		service: service,
		config:  cfg,
	}
}

func (h *WithdrawalHandler) RegisterRoutes(router *gin.RouterGroup) {
	withdrawals := router.Group("/withdrawals")
	withdrawals.Use(middleware.RequireAuth(h.config))
	{
		withdrawals.POST("", h.request)
		withdrawals.GET("/history", h.history)
	}

	admin := router.Group("/admin/withdrawals")
	admin.Use(middleware.RequireAdmin(h.config))
	{
		admin.GET("", h.queue)
		admin.POST("/settle", h.settle)
	}
}

// @Summary Request a withdrawal
// @Description Holds the amount from the available balance and queues the payout
// @Tags withdrawals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.RequestInput true "Withdrawal amount"
// @Success 200 {object} models.HistoryEntry
// @Failure 400 {object} middleware.AlertResponse
// @Failure 422 {object} middleware.AlertResponse
// @Router /withdrawals [post]
func (h *WithdrawalHandler) request(c *gin.Context) {
	var input models.RequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("amount", "Amount is required"))
		return
	}
	if err := validation.ValidateAmount(input.Amount); err != nil {
		c.Error(apperrors.NewValidationError("amount", err.Error()))
		return
	}

	entry, err := h.service.Request(c.Request.Context(), middleware.UserEmail(c), input.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary Withdrawal history
// @Tags withdrawals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.HistoryEntry
// @Router /withdrawals/history [get]
func (h *WithdrawalHandler) history(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// @Summary Pending payout queue
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.QueueEntry
// @Router /admin/withdrawals [get]
func (h *WithdrawalHandler) queue(c *gin.Context) {
	entries, err := h.service.Queue(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue": entries})
}

// @Summary Settle a queued payout
// @Description Marks the payout success or failed; a failure refunds the held amount
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.SettleInput true "Settlement outcome"
// @Success 200 {object} map[string]string
// @Failure 404 {object} middleware.AlertResponse
// @Router /admin/withdrawals/settle [post]
func (h *WithdrawalHandler) settle(c *gin.Context) {
	var input models.SettleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("paymentRef", "Payment reference is required"))
		return
	}

	if err := h.service.Settle(c.Request.Context(), input.PaymentRef, input.Success); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "settled"})
}
