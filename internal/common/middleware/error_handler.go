package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"nftclicks-backend/internal/common/errors"
)

// AlertResponse is the user-facing failure payload. The shape (alertType +
// alert flag + message) is what the frontend renders as a banner.
type AlertResponse struct {
	AlertType string `json:"alertType"`
	Alert     string `json:"alert"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// RequestID assigns every request a correlation id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorHandler recovers panics and renders them as internal errors.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		logger.Error("Panic recovered",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.String("stack", string(debug.Stack())),
		)

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithRequestID(requestID).
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		sendErrorResponse(c, appErr, logger)
	})
}

// HandleErrors drains errors attached by handlers and renders the last one.
func HandleErrors(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := errors.AsAppError(err); ok {
			sendErrorResponse(c, appErr, logger)
			return
		}

		appErr := errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred").
			WithRequestID(getRequestID(c))
		sendErrorResponse(c, appErr, logger)
	}
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, logger *zap.Logger) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	logError(appErr, logger, c)

	c.JSON(getHTTPStatusCode(appErr), AlertResponse{
		AlertType: appErr.AlertType(),
		Alert:     "true",
		Message:   appErr.Message,
		Code:      string(appErr.Code),
		RequestID: requestID,
	})
}

func getHTTPStatusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeInvalidAmount,
		errors.ErrCodeBelowMinimum, errors.ErrCodeBankDetailsMissing:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeUserNotFound,
		errors.ErrCodePaymentNotFound, errors.ErrCodeSettlementNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodePaymentAlreadyUsed, errors.ErrCodeEmailTaken:
		return http.StatusConflict
	case errors.ErrCodeInsufficientBalance, errors.ErrCodeReferralRequired,
		errors.ErrCodeUploadLimitReached:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCacheError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, logger *zap.Logger, c *gin.Context) {
	fields := []zap.Field{
		zap.String("request_id", getRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("error_code", string(appErr.Code)),
		zap.String("error_message", appErr.Message),
	}

	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	switch {
	case appErr.IsInternal():
		logger.Error("Internal error occurred", fields...)
	case appErr.IsUnauthorized():
		logger.Warn("Unauthorized access attempt", fields...)
	case appErr.IsValidation():
		logger.Info("Validation error", fields...)
	case appErr.IsNotFound():
		logger.Info("Resource not found", fields...)
	default:
		logger.Error("Application error occurred", fields...)
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
