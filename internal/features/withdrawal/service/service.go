package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	usermodels "nftclicks-backend/internal/features/user/models"
	userrepo "nftclicks-backend/internal/features/user/repository"
	"nftclicks-backend/internal/features/withdrawal/models"
	"nftclicks-backend/internal/features/withdrawal/repository"
)

// referenceAttempts bounds retries when a generated payout reference
// collides with an existing one.
const referenceAttempts = 3

type WithdrawalService interface {
	// Request validates eligibility, holds the amount and queues the
	// payout for settlement.
	Request(ctx context.Context, email string, amount int64) (*models.HistoryEntry, error)
	// Settle finalizes a queued payout. A failed settlement refunds the
	// held amount.
	Settle(ctx context.Context, paymentRef string, success bool) error
	Queue(ctx context.Context) ([]*models.QueueEntry, error)
	History(ctx context.Context, email string) ([]*models.HistoryEntry, error)
}

type withdrawalService struct {
	withdrawals repository.WithdrawalRepository
	users       userrepo.UserRepository
	config      *config.Config
	logger      *zap.Logger
}

func NewWithdrawalService(
	withdrawals repository.WithdrawalRepository,
	users userrepo.UserRepository,
	cfg *config.Config,
	logger *zap.Logger,
) WithdrawalService {
	return &withdrawalService{
		withdrawals: withdrawals,
		users:       users,
		config:      cfg,
		logger:      logger,
	}
}

func (s *withdrawalService) Request(ctx context.Context, email string, amount int64) (*models.HistoryEntry, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(email)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	downlines, err := s.users.FindDownlines(ctx, user.SponsorID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find downlines", err)
	}
	if !hasActiveDownline(downlines) {
		return nil, apperrors.New(apperrors.ErrCodeReferralRequired, "Refer at least one active member to withdraw")
	}

	if !user.HasBank() {
		return nil, apperrors.New(apperrors.ErrCodeBankDetailsMissing, "Add bank details before withdrawing")
	}

	if amount < s.config.Withdrawal.Minimum {
		return nil, apperrors.New(apperrors.ErrCodeBelowMinimum,
			fmt.Sprintf("Minimum withdrawal amount is %d", s.config.Withdrawal.Minimum))
	}

	now := time.Now()
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		paymentRef, err := generateReference()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate payout reference")
		}

		history := &models.HistoryEntry{
			PaymentRef: paymentRef,
			Email:      email,
			Amount:     amount,
			Status:     models.StatusPending,
			Time:       now,
		}
		queue := &models.QueueEntry{
			PaymentRef:    paymentRef,
			Email:         email,
			Amount:        amount,
			HolderName:    user.Bank.HolderName,
			AccountNumber: user.Bank.AccountNumber,
			BankName:      user.Bank.BankName,
			IFSC:          user.Bank.IFSC,
			Mobile:        user.Bank.Mobile,
			RequestedAt:   now,
		}

		err = s.withdrawals.CreateRequest(ctx, history, queue)
		if err == nil {
			s.logger.Info("withdrawal requested",
				zap.String("email", email),
				zap.String("payment_ref", paymentRef),
				zap.Int64("amount", amount),
			)
			return history, nil
		}
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, apperrors.New(apperrors.ErrCodeInsufficientBalance, "Insufficient available balance")
		}
		if errors.Is(err, repository.ErrDuplicateReference) {
			continue
		}
		return nil, apperrors.NewDatabaseError("create withdrawal", err)
	}

	return nil, apperrors.New(apperrors.ErrCodeInternal, "Failed to allocate payout reference")
}

func (s *withdrawalService) Settle(ctx context.Context, paymentRef string, success bool) error {
	err := s.withdrawals.Settle(ctx, paymentRef, success)
	if err != nil {
		if errors.Is(err, repository.ErrSettlementNotFound) {
			return apperrors.New(apperrors.ErrCodeSettlementNotFound, "No pending withdrawal with that reference")
		}
		return apperrors.NewDatabaseError("settle withdrawal", err)
	}

	s.logger.Info("withdrawal settled",
		zap.String("payment_ref", paymentRef),
		zap.Bool("success", success),
	)
	return nil
}

func (s *withdrawalService) Queue(ctx context.Context) ([]*models.QueueEntry, error) {
	entries, err := s.withdrawals.ListQueue(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list queue", err)
	}
	return entries, nil
}

func (s *withdrawalService) History(ctx context.Context, email string) ([]*models.HistoryEntry, error) {
	entries, err := s.withdrawals.ListHistory(ctx, email)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list history", err)
	}
	return entries, nil
}

func hasActiveDownline(downlines []*usermodels.User) bool {
	for _, downline := range downlines {
		if downline.Status.Active() {
			return true
		}
	}
	return false
}

// generateReference builds an INF-prefixed 12 digit payout reference.
func generateReference() (string, error) {
	max := big.NewInt(1_000_000_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INF%012d", n), nil
}
