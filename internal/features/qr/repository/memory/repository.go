package memory

import (
	"context"
	"sync"

	"nftclicks-backend/internal/features/qr/models"
)

// Repository is an in-memory QRRepository for tests and local runs.
type Repository struct {
	mu     sync.Mutex
	config models.UPIConfig
}

func NewRepository() *Repository {
	return &Repository{
		config: models.UPIConfig{VPA: "dummy@upiId"},
	}
}

func (r *Repository) GetConfig(ctx context.Context) (*models.UPIConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := r.config
	return &clone, nil
}

func (r *Repository) SetConfig(ctx context.Context, config *models.UPIConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config = *config
	return nil
}
