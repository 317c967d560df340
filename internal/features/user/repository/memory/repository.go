package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"nftclicks-backend/internal/features/user/models"
	"nftclicks-backend/internal/features/user/repository"
)

// Repository is an in-memory UserRepository. It backs tests and local runs
// without Postgres; mutations follow the same atomic add-and-log contract
// as the SQL implementation.
type Repository struct {
	mu           sync.Mutex
	users        map[string]*models.User
	transactions map[string][]models.Transaction
}

func NewRepository() *Repository {
	return &Repository{
		users:        make(map[string]*models.User),
		transactions: make(map[string][]models.Transaction),
	}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	for _, existing := range r.users {
		if existing.SponsorID == user.SponsorID {
			return repository.ErrSponsorCodeTaken
		}
	}

	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetBySponsorID(ctx context.Context, sponsorID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.SponsorID == sponsorID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *Repository) FindDownlines(ctx context.Context, sponsorID string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var downlines []*models.User
	for _, user := range r.users {
		if user.InviteCode == sponsorID {
			clone := *user
			downlines = append(downlines, &clone)
		}
	}
	sort.Slice(downlines, func(i, j int) bool {
		return downlines[i].Email < downlines[j].Email
	})
	return downlines, nil
}

func (r *Repository) UpdateBank(ctx context.Context, email string, bank *models.Bank) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	clone := *bank
	user.Bank = &clone
	return nil
}

func (r *Repository) CreditWallet(ctx context.Context, email string, bucket models.Bucket, amount int64, entry models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.Wallet = user.Wallet.Credit(bucket, amount)
	r.transactions[email] = append(r.transactions[email], entry)
	return nil
}

func (r *Repository) ApplyUploadCredit(ctx context.Context, email string, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.UploadLimit < count {
		return repository.ErrLimitExceeded
	}

	user.UploadLimit -= count
	user.Wallet.Today += count
	user.Wallet.Available += count
	user.Wallet.Total += count
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, email string) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.transactions[email]
	out := make([]models.Transaction, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Email < users[j].Email
	})
	return users, nil
}

func (r *Repository) ResetQuota(ctx context.Context, email string, limit int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.UploadLimit = limit
	user.Wallet.Today = 0
	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *Repository) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, user := range r.users {
		if user.Status == status {
			count++
		}
	}
	return count, nil
}

// ApplyActivation performs the tier transition half of payment
// consumption: status change, quota bump, activation date.
func (r *Repository) ApplyActivation(email string, status models.Status, limitBump int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Status = status
	user.UploadLimit += limitBump
	user.ActivatedAt = at
	return nil
}

// AppendTransaction records a ledger entry without moving any balance.
// Used where the SQL implementation inserts the entry inside a larger
// transaction, such as withdrawal requests.
func (r *Repository) AppendTransaction(email string, entry models.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions[email] = append(r.transactions[email], entry)
}

// DebitAvailable holds funds for a withdrawal. Only available moves.
func (r *Repository) DebitAvailable(email string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}

	wallet, err := user.Wallet.Debit(amount)
	if err != nil {
		return err
	}
	user.Wallet = wallet
	return nil
}

// RefundAvailable returns held funds after a failed settlement.
func (r *Repository) RefundAvailable(email string, amount int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[email]; ok {
		user.Wallet.Available += amount
	}
}

// SetStatus is a test helper to place a user directly into a tier.
func (r *Repository) SetStatus(email string, status models.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[email]; ok {
		user.Status = status
	}
}
