package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nftclicks-backend/internal/common/config"
	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/common/middleware"
	"nftclicks-backend/internal/common/validation"
	"nftclicks-backend/internal/features/user/models"
	"nftclicks-backend/internal/features/user/repository"
)

// sponsorCodeAttempts bounds retries when a generated sponsor code
// collides with an existing one.
const sponsorCodeAttempts = 5

type UserService interface {
	Register(ctx context.Context, input *models.SignUpInput) (*models.UserResponse, error)
	// Login returns a signed session token on valid credentials.
	Login(ctx context.Context, input *models.SignInInput) (string, *models.UserResponse, error)
	Profile(ctx context.Context, email string) (*models.UserResponse, error)
	Downlines(ctx context.Context, email string) ([]*models.UserResponse, error)
	Transactions(ctx context.Context, email string) ([]models.Transaction, error)
	SetBankDetails(ctx context.Context, email string, input *models.BankDetailsInput) error
	// RecordUploads consumes daily quota and credits the wallet one unit
	// per stored file.
	RecordUploads(ctx context.Context, email string, count int64) error
	// ResetDailyQuotas restores every account's upload limit and zeroes
	// the today counter. Runs from the scheduler.
	ResetDailyQuotas(ctx context.Context) error
}

type userService struct {
	users  repository.UserRepository
	config *config.Config
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, cfg *config.Config, logger *zap.Logger) UserService {
	return &userService{
		users:  users,
		config: cfg,
		logger: logger,
	}
}

func (s *userService) Register(ctx context.Context, input *models.SignUpInput) (*models.UserResponse, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, apperrors.NewValidationError("username", err.Error())
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, apperrors.NewValidationError("email", err.Error())
	}
	if err := validation.ValidatePasswords(input.Password, input.RePassword); err != nil {
		return nil, apperrors.NewValidationError("pass", err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to hash password")
	}

	for attempt := 0; attempt < sponsorCodeAttempts; attempt++ {
		sponsorID, err := generateSponsorCode()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate sponsor code")
		}

		user := &models.User{
			Email:        email,
			Username:     strings.TrimSpace(input.Username),
			PasswordHash: string(hash),
			SponsorID:    sponsorID,
			InviteCode:   strings.TrimSpace(input.InviteCode),
			Status:       models.StatusFree,
			UploadLimit:  s.config.Quota.Standard,
			SignedUpAt:   time.Now(),
		}

		err = s.users.Create(ctx, user)
		if err == nil {
			s.logger.Info("user registered",
				zap.String("email", email),
				zap.String("sponsor_id", sponsorID),
			)
			return models.ToUserResponse(user), nil
		}
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.New(apperrors.ErrCodeEmailTaken, "An account with this email already exists")
		}
		if errors.Is(err, repository.ErrSponsorCodeTaken) {
			continue
		}
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	return nil, apperrors.New(apperrors.ErrCodeInternal, "Failed to allocate sponsor code")
}

func (s *userService) Login(ctx context.Context, input *models.SignInInput) (string, *models.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return "", nil, apperrors.NewDatabaseError("get user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return "", nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	token, err := middleware.IssueToken(s.config, user.Email)
	if err != nil {
		return "", nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue token")
	}

	return token, models.ToUserResponse(user), nil
}

func (s *userService) Profile(ctx context.Context, email string) (*models.UserResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(email)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return models.ToUserResponse(user), nil
}

func (s *userService) Downlines(ctx context.Context, email string) ([]*models.UserResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(email)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	downlines, err := s.users.FindDownlines(ctx, user.SponsorID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find downlines", err)
	}

	responses := make([]*models.UserResponse, 0, len(downlines))
	for _, downline := range downlines {
		responses = append(responses, models.ToUserResponse(downline))
	}
	return responses, nil
}

func (s *userService) Transactions(ctx context.Context, email string) ([]models.Transaction, error) {
	entries, err := s.users.ListTransactions(ctx, email)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list transactions", err)
	}
	return entries, nil
}

func (s *userService) SetBankDetails(ctx context.Context, email string, input *models.BankDetailsInput) error {
	if err := validation.ValidateAccountNumbers(input.AccountNumber, input.ReAccountNumber); err != nil {
		return apperrors.NewValidationError("accountNumber", err.Error())
	}
	if err := validation.ValidateIFSC(input.IFSC); err != nil {
		return apperrors.NewValidationError("ifsc", err.Error())
	}
	if err := validation.ValidateMobile(input.Mobile); err != nil {
		return apperrors.NewValidationError("mobile", err.Error())
	}

	bank := &models.Bank{
		HolderName:    strings.TrimSpace(input.HolderName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		BankName:      strings.TrimSpace(input.BankName),
		IFSC:          strings.ToUpper(strings.TrimSpace(input.IFSC)),
		Mobile:        input.Mobile,
	}

	if err := s.users.UpdateBank(ctx, email, bank); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NewUserNotFoundError(email)
		}
		return apperrors.NewDatabaseError("update bank", err)
	}

	s.logger.Info("bank details updated", zap.String("email", email))
	return nil
}

func (s *userService) RecordUploads(ctx context.Context, email string, count int64) error {
	if count <= 0 {
		return apperrors.NewValidationError("count", "count must be positive")
	}

	err := s.users.ApplyUploadCredit(ctx, email, count)
	if err != nil {
		if errors.Is(err, repository.ErrLimitExceeded) {
			return apperrors.New(apperrors.ErrCodeUploadLimitReached, "Daily upload limit reached")
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.NewUserNotFoundError(email)
		}
		return apperrors.NewDatabaseError("apply upload credit", err)
	}
	return nil
}

func (s *userService) ResetDailyQuotas(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return apperrors.NewDatabaseError("list users", err)
	}

	var failures int
	for _, user := range users {
		limit := s.config.Quota.Standard
		if user.Status == models.StatusPremium {
			limit = s.config.Quota.Premium
		}

		if err := s.users.ResetQuota(ctx, user.Email, limit); err != nil {
			// One bad row must not stall the rest of the sweep.
			failures++
			s.logger.Error("quota reset failed",
				zap.String("email", user.Email),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("daily quota reset complete",
		zap.Int("users", len(users)),
		zap.Int("failures", failures),
	)
	return nil
}

// generateSponsorCode builds an NFT-prefixed 5 digit referral code.
func generateSponsorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("NFT%05d", n), nil
}
