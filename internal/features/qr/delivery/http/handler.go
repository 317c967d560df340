package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/features/qr/models"
	"nftclicks-backend/internal/features/qr/service"
)

type QRHandler struct {
	service service.QRService
	config  *config.Config
}

func NewQRHandler(service service.QRService, cfg *config.Config) *QRHandler {
	return &QRHandler{
		service: service,
		config:  cfg,
	}
}

func (h *QRHandler) RegisterRoutes(router *gin.RouterGroup) {
	qr := router.Group("/qr")
	qr.Use(middleware.RequireAuth(h.config))
	{
		qr.GET("/image", h.image)
		qr.GET("/payee", h.payee)
	}

	admin := router.Group("/admin/qr")
	admin.Use(middleware.RequireAdmin(h.config))
	{
		admin.PUT("/payee", h.updatePayee)
	}
}

// @Summary Payment QR code
// @Description Renders a UPI QR image for the requested amount
// @Tags qr
// @Produce png
// @Security BearerAuth
// @Param amount query int true "Payment amount"
// @Success 200 {file} png
// @Failure 400 {object} middleware.AlertResponse
// @Router /qr/image [get]
func (h *QRHandler) image(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		c.Error(apperrors.NewValidationError("amount", "Amount must be a number"))
		return
	}

	png, err := h.service.Image(c.Request.Context(), amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// @Summary Current UPI payee
// @Tags qr
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UPIConfig
// @Router /qr/payee [get]
func (h *QRHandler) payee(c *gin.Context) {
	payee, err := h.service.Payee(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payee)
}

// @Summary Update the UPI payee
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.UpdateInput true "Payee details"
// @Success 200 {object} map[string]string
// @Failure 400 {object} middleware.AlertResponse
// @Router /admin/qr/payee [put]
func (h *QRHandler) updatePayee(c *gin.Context) {
	var input models.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("upiId", "UPI ID is required"))
		return
	}

	if err := h.service.UpdatePayee(c.Request.Context(), &input); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
