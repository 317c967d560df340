package repository

import (
	"context"
	"errors"

	"nftclicks-backend/internal/features/user/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already exists")
	ErrSponsorCodeTaken = errors.New("sponsor code already exists")
	ErrLimitExceeded    = errors.New("upload limit exceeded")
)

// UserRepository persists accounts, wallets and the transaction log. Wallet
// mutations are atomic add operations at the storage layer, never
// read-then-write snapshots, so concurrent credits to a shared ancestor
// cannot lose updates.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetBySponsorID resolves the upward link: the user whose sponsor code
	// equals the given invite code.
	GetBySponsorID(ctx context.Context, sponsorID string) (*models.User, error)
	// FindDownlines lists users recruited directly under the given sponsor
	// code (their invite_code equals it).
	FindDownlines(ctx context.Context, sponsorID string) ([]*models.User, error)

	UpdateBank(ctx context.Context, email string, bank *models.Bank) error

	// CreditWallet adds amount to the named bucket plus total and available,
	// and appends the ledger entry, in one transaction.
	CreditWallet(ctx context.Context, email string, bucket models.Bucket, amount int64, entry models.Transaction) error
	// ApplyUploadCredit consumes quota and credits today/available/total by
	// count, guarded against exceeding the remaining limit.
	ApplyUploadCredit(ctx context.Context, email string, count int64) error

	ListTransactions(ctx context.Context, email string) ([]models.Transaction, error)

	ListAll(ctx context.Context) ([]*models.User, error)
	ResetQuota(ctx context.Context, email string, limit int64) error

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
}
