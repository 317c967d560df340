package memory

import (
	"context"
	"sort"
	"sync"

	usermodels "nftclicks-backend/internal/features/user/models"
	usermemory "nftclicks-backend/internal/features/user/repository/memory"
	"nftclicks-backend/internal/features/withdrawal/models"
	"nftclicks-backend/internal/features/withdrawal/repository"
)

// Repository is an in-memory WithdrawalRepository for tests and local runs.
type Repository struct {
	mu      sync.Mutex
	history map[string]*models.HistoryEntry
	queue   map[string]*models.QueueEntry
	users   *usermemory.Repository
}

func NewRepository(users *usermemory.Repository) *Repository {
	return &Repository{
		history: make(map[string]*models.HistoryEntry),
		queue:   make(map[string]*models.QueueEntry),
		users:   users,
	}
}

func (r *Repository) CreateRequest(ctx context.Context, history *models.HistoryEntry, queue *models.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.history[history.PaymentRef]; ok {
		return repository.ErrDuplicateReference
	}

	if err := r.users.DebitAvailable(history.Email, history.Amount); err != nil {
		return repository.ErrInsufficientBalance
	}

	r.users.AppendTransaction(history.Email, usermodels.Transaction{
		Type:   usermodels.TransactionWithdrawal,
		Amount: history.Amount,
		Level:  repository.LedgerLabel,
	})

	historyClone := *history
	queueClone := *queue
	r.history[history.PaymentRef] = &historyClone
	r.queue[queue.PaymentRef] = &queueClone
	return nil
}

func (r *Repository) GetQueueEntry(ctx context.Context, paymentRef string) (*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.queue[paymentRef]
	if !ok {
		return nil, repository.ErrSettlementNotFound
	}
	clone := *entry
	return &clone, nil
}

func (r *Repository) Settle(ctx context.Context, paymentRef string, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.queue[paymentRef]
	if !ok {
		return repository.ErrSettlementNotFound
	}

	if history, ok := r.history[paymentRef]; ok {
		if success {
			history.Status = models.StatusSuccess
		} else {
			history.Status = models.StatusFailed
		}
	}

	if !success {
		r.users.RefundAvailable(entry.Email, entry.Amount)
	}

	delete(r.queue, paymentRef)
	return nil
}

func (r *Repository) ListQueue(ctx context.Context) ([]*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*models.QueueEntry, 0, len(r.queue))
	for _, entry := range r.queue {
		clone := *entry
		entries = append(entries, &clone)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RequestedAt.Before(entries[j].RequestedAt)
	})
	return entries, nil
}

func (r *Repository) ListHistory(ctx context.Context, email string) ([]*models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []*models.HistoryEntry
	for _, entry := range r.history {
		if entry.Email == email {
			clone := *entry
			entries = append(entries, &clone)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
	return entries, nil
}
