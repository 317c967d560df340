package memory

import (
	"context"
	"sync"
	"time"

	"nftclicks-backend/internal/features/payment/models"
	"nftclicks-backend/internal/features/payment/repository"
	usermodels "nftclicks-backend/internal/features/user/models"
	usermemory "nftclicks-backend/internal/features/user/repository/memory"
)

// Repository is an in-memory PaymentRepository for tests and local runs.
type Repository struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
	users    *usermemory.Repository
}

func NewRepository(users *usermemory.Repository) *Repository {
	return &Repository{
		payments: make(map[string]*models.Payment),
		users:    users,
	}
}

func (r *Repository) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.Reference]; ok {
		return repository.ErrDuplicatePayment
	}
	clone := *payment
	r.payments[payment.Reference] = &clone
	return nil
}

func (r *Repository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[reference]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r *Repository) ConsumeForActivation(ctx context.Context, reference, email string, newStatus usermodels.Status, limitBump int64, activatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[reference]
	if !ok || payment.Token != models.TokenValid {
		return repository.ErrPaymentAlreadyUsed
	}

	if err := r.users.ApplyActivation(email, newStatus, limitBump, activatedAt); err != nil {
		return err
	}

	payment.Token = models.TokenInvalid
	return nil
}
