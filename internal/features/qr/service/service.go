package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	apperrors "nftclicks-backend/internal/common/errors"
	"nftclicks-backend/internal/features/qr/models"
	"nftclicks-backend/internal/features/qr/repository"
)

const (
	qrSize     = 256
	qrCacheTTL = time.Hour
)

// ImageCache is the slice of the cache service QR rendering uses.
// Satisfied by cache.CacheService.
type ImageCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type QRService interface {
	// Image renders a UPI payment QR code for the given amount. Rendered
	// images are cached per payee and amount.
	Image(ctx context.Context, amount int64) ([]byte, error)
	Payee(ctx context.Context) (*models.UPIConfig, error)
	UpdatePayee(ctx context.Context, input *models.UpdateInput) error
}

type qrService struct {
	repo   repository.QRRepository
	cache  ImageCache
	logger *zap.Logger
}

func NewQRService(repo repository.QRRepository, cache ImageCache, logger *zap.Logger) QRService {
	return &qrService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *qrService) Image(ctx context.Context, amount int64) ([]byte, error) {
	if amount <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidAmount, "Amount must be positive")
	}

	config, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get qr config", err)
	}

	// The payee is part of the key, so a payee change never serves a
	// stale image.
	key := fmt.Sprintf("qr:%s:%d", config.VPA, amount)

	var cached []byte
	if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	png, err := qrcode.Encode(upiPayload(config, amount), qrcode.Medium, qrSize)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to render QR code")
	}

	if err := s.cache.Set(ctx, key, png, qrCacheTTL); err != nil {
		s.logger.Warn("qr cache write failed", zap.Error(err))
	}

	return png, nil
}

func (s *qrService) Payee(ctx context.Context) (*models.UPIConfig, error) {
	config, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get qr config", err)
	}
	return config, nil
}

func (s *qrService) UpdatePayee(ctx context.Context, input *models.UpdateInput) error {
	vpa := strings.TrimSpace(input.VPA)
	if !strings.Contains(vpa, "@") {
		return apperrors.NewValidationError("upiId", "UPI ID must contain a handle")
	}

	config := &models.UPIConfig{
		VPA:       vpa,
		PayeeName: strings.TrimSpace(input.PayeeName),
	}
	if err := s.repo.SetConfig(ctx, config); err != nil {
		return apperrors.NewDatabaseError("set qr config", err)
	}

	s.logger.Info("upi payee updated", zap.String("vpa", vpa))
	return nil
}

// upiPayload builds the upi://pay deep link encoded into the QR image.
func upiPayload(config *models.UPIConfig, amount int64) string {
	params := url.Values{}
	params.Set("pa", config.VPA)
	if config.PayeeName != "" {
		params.Set("pn", config.PayeeName)
	}
	params.Set("am", fmt.Sprintf("%d", amount))
	params.Set("cu", "INR")
	return "upi://pay?" + params.Encode()
}
