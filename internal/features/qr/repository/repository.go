package repository

import (
	"context"

	"nftclicks-backend/internal/features/qr/models"
)

// QRRepository stores the singleton UPI payee configuration.
type QRRepository interface {
	// GetConfig returns the current payee, seeding the default row on
	// first use.
	GetConfig(ctx context.Context) (*models.UPIConfig, error)
	SetConfig(ctx context.Context, config *models.UPIConfig) error
}
