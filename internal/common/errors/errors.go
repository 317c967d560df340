package errors

import (
	"fmt"
	"time"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken   ErrorCode = "EMAIL_TAKEN"

	ErrCodePaymentNotFound    ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodePaymentAlreadyUsed ErrorCode = "PAYMENT_ALREADY_USED"
	ErrCodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"

	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeReferralRequired    ErrorCode = "REFERRAL_REQUIRED"
	ErrCodeBankDetailsMissing  ErrorCode = "BANK_DETAILS_MISSING"
	ErrCodeBelowMinimum        ErrorCode = "BELOW_MINIMUM"
	ErrCodeSettlementNotFound  ErrorCode = "SETTLEMENT_NOT_FOUND"
	ErrCodeUploadLimitReached  ErrorCode = "UPLOAD_LIMIT_REACHED"

	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"
)

// AppError is the typed application error carried through handlers and
// rendered by the error middleware as a user-facing alert.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error targets a missing resource.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodePaymentNotFound ||
		e.Code == ErrCodeSettlementNotFound
}

// IsValidation reports whether the error is recoverable caller input.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidAmount,
		ErrCodeInsufficientBalance, ErrCodeReferralRequired,
		ErrCodeBankDetailsMissing, ErrCodeBelowMinimum,
		ErrCodeUploadLimitReached, ErrCodeEmailTaken:
		return true
	}
	return false
}

func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden
}

func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeDatabaseError || e.Code == ErrCodeCacheError
}

// AlertType maps the error onto the alert severity shown to the caller.
func (e *AppError) AlertType() string {
	switch e.Code {
	case ErrCodePaymentAlreadyUsed, ErrCodeBelowMinimum, ErrCodeInsufficientBalance:
		return "warning"
	default:
		return "danger"
	}
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap attaches a cause to a new application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUserNotFoundError(email string) *AppError {
	return New(ErrCodeUserNotFound, "User not found").WithDetail("email", email)
}

func NewPaymentNotFoundError(reference string) *AppError {
	return New(ErrCodePaymentNotFound, "Invalid transaction ID").WithDetail("reference", reference)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason))
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError converts err to *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
