package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/features/user/models"
	"nftclicks-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
	config  *config.Config
}

func NewUserHandler(service service.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		service: service,
		config:  cfg,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/signin", h.signIn)
	}

	users := router.Group("/users")
	users.Use(middleware.RequireAuth(h.config))
	{
		users.GET("/me", h.profile)
		users.GET("/me/downlines", h.downlines)
		users.GET("/me/transactions", h.transactions)
		users.PUT("/me/bank", h.setBankDetails)
		users.POST("/me/uploads", h.recordUploads)
	}
}

// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.SignUpInput true "Registration details"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} middleware.AlertResponse
// @Failure 409 {object} middleware.AlertResponse
// @Router /auth/signup [post]
func (h *UserHandler) signUp(c *gin.Context) {
	var input models.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.SignInInput true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} middleware.AlertResponse
// @Router /auth/signin [post]
func (h *UserHandler) signIn(c *gin.Context) {
	var input models.SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// @Summary Current profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Router /users/me [get]
func (h *UserHandler) profile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Direct downlines
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserResponse
// @Router /users/me/downlines [get]
func (h *UserHandler) downlines(c *gin.Context) {
	downlines, err := h.service.Downlines(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"downlines": downlines})
}

// @Summary Wallet transaction log
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Transaction
// @Router /users/me/transactions [get]
func (h *UserHandler) transactions(c *gin.Context) {
	entries, err := h.service.Transactions(c.Request.Context(), middleware.UserEmail(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}

// @Summary Set payout bank details
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.BankDetailsInput true "Bank details"
// @Success 200 {object} map[string]string
// @Failure 400 {object} middleware.AlertResponse
// @Router /users/me/bank [put]
func (h *UserHandler) setBankDetails(c *gin.Context) {
	var input models.BankDetailsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("body", err.Error()))
		return
	}

	if err := h.service.SetBankDetails(c.Request.Context(), middleware.UserEmail(c), &input); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// @Summary Record completed uploads
// @Description Consumes daily quota and credits the wallet per stored file
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.UploadInput true "Stored file count"
// @Success 200 {object} map[string]string
// @Failure 422 {object} middleware.AlertResponse
// @Router /users/me/uploads [post]
func (h *UserHandler) recordUploads(c *gin.Context) {
	var input models.UploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperrors.NewValidationError("count", "Count is required"))
		return
	}

	if err := h.service.RecordUploads(c.Request.Context(), middleware.UserEmail(c), input.Count); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "credited"})
}
