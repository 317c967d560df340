package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/features/payment/models"
	"nftclicks-backend/internal/features/payment/repository"
	referral "nftclicks-backend/internal/features/referral/service"
	usermodels "nftclicks-backend/internal/features/user/models"
	userrepo "nftclicks-backend/internal/features/user/repository"
)

type PaymentService interface {
	// IngestWebhook verifies the gateway signature over the raw body and
	// records the payment with a Valid token. Invalid signatures are
	// dropped silently; the gateway only needs a 200.
	IngestWebhook(ctx context.Context, body []byte, signature string) error
	// Activate consumes a payment exactly once, transitions the caller's
	// tier, and propagates referral commissions.
	Activate(ctx context.Context, email, reference string) (*models.ActivationResult, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	users    userrepo.UserRepository
	walker   *referral.Walker
	config   *config.Config
	logger   *zap.Logger
}

func NewPaymentService(
	payments repository.PaymentRepository,
	users userrepo.UserRepository,
	walker *referral.Walker,
	cfg *config.Config,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		payments: payments,
		users:    users,
		walker:   walker,
		config:   cfg,
		logger:   logger,
	}
}

func (s *paymentService) IngestWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.signatureValid(body, signature) {
		s.logger.Warn("webhook signature rejected")
		return nil
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Malformed webhook payload")
	}

	entity := payload.Payload.Payment.Entity
	payment := &models.Payment{
		Reference: entity.AcquirerData.RRN,
		PaymentID: entity.ID,
		Amount:    entity.Amount / 100,
		VPA:       entity.VPA,
		Status:    entity.Status,
		Token:     models.TokenValid,
		CreatedAt: time.Now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			// Gateways redeliver; the first record wins.
			s.logger.Info("duplicate webhook delivery ignored",
				zap.String("reference", payment.Reference))
			return nil
		}
		return apperrors.NewDatabaseError("create payment", err)
	}

	s.logger.Info("payment recorded",
		zap.String("reference", payment.Reference),
		zap.Int64("amount", payment.Amount),
	)
	return nil
}

func (s *paymentService) signatureValid(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.config.Gateway.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *paymentService) Activate(ctx context.Context, email, reference string) (*models.ActivationResult, error) {
	payment, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperrors.NewPaymentNotFoundError(reference)
		}
		return nil, apperrors.NewDatabaseError("get payment", err)
	}

	if payment.Token != models.TokenValid {
		return nil, apperrors.New(apperrors.ErrCodePaymentAlreadyUsed, "Payment ID has already been validated")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(email)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	switch user.Status {
	case usermodels.StatusFree, usermodels.StatusNone:
		return s.activate(ctx, user, payment)
	case usermodels.StatusUser:
		return s.upgrade(ctx, user, payment)
	default:
		// Leader and Premium have no further transition; surface a
		// warning without touching any state.
		return &models.ActivationResult{
			NewStatus: string(user.Status),
			AlertType: "warning",
			Alert:     "true",
			Message:   "Plan already active, nothing to activate",
		}, nil
	}
}

func (s *paymentService) activate(ctx context.Context, user *usermodels.User, payment *models.Payment) (*models.ActivationResult, error) {
	var (
		newStatus usermodels.Status
		limitBump int64
	)

	switch payment.Amount {
	case s.config.Pricing.User:
		newStatus = usermodels.StatusUser
	case s.config.Pricing.Premium:
		newStatus = usermodels.StatusPremium
		limitBump = s.config.Quota.PremiumBump
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidAmount, "Invalid amount")
	}

	if err := s.consume(ctx, user, payment, newStatus, limitBump); err != nil {
		return nil, err
	}

	// Commissions follow the committed transition. A crash here loses
	// them but never replays the payment.
	s.walker.Propagate(ctx, user, referral.EventActivation)

	s.logger.Info("plan activated",
		zap.String("email", user.Email),
		zap.String("status", string(newStatus)),
		zap.String("reference", payment.Reference),
	)

	return &models.ActivationResult{
		NewStatus: string(newStatus),
		AlertType: "success",
		Alert:     "true",
		Message:   "Payment successful, plan activated",
	}, nil
}

func (s *paymentService) upgrade(ctx context.Context, user *usermodels.User, payment *models.Payment) (*models.ActivationResult, error) {
	if payment.Amount != s.config.Pricing.Leader {
		return nil, apperrors.New(apperrors.ErrCodeInvalidAmount, "Invalid amount")
	}

	if err := s.consume(ctx, user, payment, usermodels.StatusLeader, 0); err != nil {
		return nil, err
	}

	s.walker.Propagate(ctx, user, referral.EventUpgrade)

	s.logger.Info("plan upgraded",
		zap.String("email", user.Email),
		zap.String("reference", payment.Reference),
	)

	return &models.ActivationResult{
		NewStatus: string(usermodels.StatusLeader),
		AlertType: "success",
		Alert:     "true",
		Message:   "Payment successful, plan upgraded",
	}, nil
}

func (s *paymentService) consume(ctx context.Context, user *usermodels.User, payment *models.Payment, newStatus usermodels.Status, limitBump int64) error {
	err := s.payments.ConsumeForActivation(ctx, payment.Reference, user.Email, newStatus, limitBump, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrPaymentAlreadyUsed) {
			return apperrors.New(apperrors.ErrCodePaymentAlreadyUsed, "Payment ID has already been validated")
		}
		return apperrors.NewDatabaseError("consume payment", err)
	}
	return nil
}
