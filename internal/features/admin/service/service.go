package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/features/admin/models"
	usermodels "nftclicks-backend/internal/features/user/models"
	userrepo "nftclicks-backend/internal/features/user/repository"
	withdrawalrepo "nftclicks-backend/internal/features/withdrawal/repository"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

// StatsCache is the slice of the cache service the dashboard uses.
// Satisfied by cache.CacheService.
type StatsCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, setter func() (interface{}, error)) error
	InvalidateStats(ctx context.Context) error
}

type AdminService interface {
	// Login checks panel credentials and returns an admin session token.
	Login(ctx context.Context, input *models.LoginInput) (string, error)
	Stats(ctx context.Context) (*models.Stats, error)
	// GlobalCredit applies a manual autobot credit to one active
	// account. The ledger label encodes the amount's power-of-two level.
	GlobalCredit(ctx context.Context, email string, amount int64) error
}

type adminService struct {
	users       userrepo.UserRepository
	withdrawals withdrawalrepo.WithdrawalRepository
	cache       StatsCache
	config      *config.Config
	logger      *zap.Logger
}

func NewAdminService(
	users userrepo.UserRepository,
	withdrawals withdrawalrepo.WithdrawalRepository,
	cache StatsCache,
	cfg *config.Config,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		users:       users,
		withdrawals: withdrawals,
		cache:       cache,
		config:      cfg,
		logger:      logger,
	}
}

func (s *adminService) Login(ctx context.Context, input *models.LoginInput) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(input.Email), []byte(s.config.Auth.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(s.config.Auth.AdminPassword)) == 1
	if !emailOK || !passOK {
		return "", apperrors.NewUnauthorizedError("Invalid admin credentials")
	}

	token, err := middleware.IssueAdminToken(s.config, input.Email)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue token")
	}

	s.logger.Info("admin signed in", zap.String("email", input.Email))
	return token, nil
}

func (s *adminService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	err := s.cache.GetOrSet(ctx, statsCacheKey, &stats, statsCacheTTL, func() (interface{}, error) {
		return s.computeStats(ctx)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Failed to load dashboard stats")
	}
	return &stats, nil
}

func (s *adminService) computeStats(ctx context.Context) (*models.Stats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.users.CountByStatus(ctx, usermodels.StatusUser)
	if err != nil {
		return nil, err
	}
	leaders, err := s.users.CountByStatus(ctx, usermodels.StatusLeader)
	if err != nil {
		return nil, err
	}
	premium, err := s.users.CountByStatus(ctx, usermodels.StatusPremium)
	if err != nil {
		return nil, err
	}
	queue, err := s.withdrawals.ListQueue(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Stats{
		TotalUsers:         total,
		ActiveUsers:        activeUsers + leaders + premium,
		Leaders:            leaders,
		PremiumUsers:       premium,
		PendingWithdrawals: len(queue),
	}, nil
}

func (s *adminService) GlobalCredit(ctx context.Context, email string, amount int64) error {
	if amount <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidAmount, "Amount must be positive")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return apperrors.NewUserNotFoundError(email)
		}
		return apperrors.NewDatabaseError("get user", err)
	}
	if !user.Status.Active() {
		return apperrors.New(apperrors.ErrCodeForbidden, "Account is not active")
	}

	entry := usermodels.Transaction{
		Type:   usermodels.TransactionGlobal,
		Amount: amount,
		Level:  levelLabel(amount),
	}

	if err := s.users.CreditWallet(ctx, user.Email, usermodels.BucketAutobot, amount, entry); err != nil {
		return apperrors.NewDatabaseError("credit wallet", err)
	}

	if err := s.cache.InvalidateStats(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}

	s.logger.Info("global credit applied",
		zap.String("email", user.Email),
		zap.Int64("amount", amount),
	)
	return nil
}

// levelLabel maps a credited amount to its ledger label: 2 is level-1,
// each doubling raises the level, up to 1024 as level-10. Anything else
// gets the placeholder label.
func levelLabel(amount int64) string {
	level := 0
	for n := int64(2); n <= 1024; n *= 2 {
		level++
		if n == amount {
			return fmt.Sprintf("level-%d", level)
		}
	}
	return "-"
}
