package repository

import (
	"context"
	"errors"
	"time"

	"nftclicks-backend/internal/features/payment/models"
	usermodels "nftclicks-backend/internal/features/user/models"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentAlreadyUsed = errors.New("payment already used")
	ErrDuplicatePayment   = errors.New("payment already recorded")
)

// PaymentRepository persists gateway payments and performs the
// consume-and-transition step of activation.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)

	// ConsumeForActivation flips the payment token Valid → Invalid and
	// applies the user's tier transition in one transaction, so a consumed
	// token can never be observed without its transition. Returns
	// ErrPaymentAlreadyUsed when the token was consumed concurrently.
	ConsumeForActivation(ctx context.Context, reference, email string, newStatus usermodels.Status, limitBump int64, activatedAt time.Time) error
}
