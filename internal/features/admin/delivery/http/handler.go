package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/features/admin/models"
	"nftclicks-backend/internal/features/admin/service"
)

type AdminHandler struct {
	service service.AdminService
	config  *config.Config
}

func NewAdminHandler(service service.AdminService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		service: service,
		config:  cfg,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/admin/login", h.login)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdmin(h.config))
	{
		admin.GET("/stats", h.stats)
		admin.POST("/global-credit", h.globalCredit)
	}
}

// @Summary Admin panel login
// @Tags admin
// @Accept json
// @Produce json
// @Param input body models.LoginInput true "Admin credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} middleware.AlertResponse
// @Router /admin/login [post]
func (h *AdminHandler) login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	token, err := h.service.Login(c.Request.Context(), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary Dashboard counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Stats
// @Router /admin/stats [get]
func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Apply a manual autobot credit
// @Description Credits the named account's autobot bucket with the given amount
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.GlobalCreditInput true "Target email and amount"
// @Success 200 {object} map[string]string
// @Failure 400 {object} middleware.AlertResponse
// @Failure 404 {object} middleware.AlertResponse
// @Router /admin/global-credit [post]
func (h *AdminHandler) globalCredit(c *gin.Context) {
	var input models.GlobalCreditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", "Email and amount are required"))
		return
	}

	if err := h.service.GlobalCredit(c.Request.Context(), input.Email, input.Amount); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "credited"})
}
