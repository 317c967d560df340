package repository

import (
	"context"
	"errors"

	"nftclicks-backend/internal/features/withdrawal/models"
)

var (
	ErrDuplicateReference  = errors.New("payment reference already used")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrSettlementNotFound  = errors.New("settlement not found")
)

// LedgerLabel is the display label on withdrawal ledger entries.
const LedgerLabel = "Wallet"

// WithdrawalRepository persists withdrawal requests and settlements.
type WithdrawalRepository interface {
	// CreateRequest debits the user's available balance and records the
	// history entry, ledger entry and admin queue entry in one
	// transaction. Returns ErrInsufficientBalance when the conditional
	// debit matches no row and ErrDuplicateReference when the generated
	// reference collides, so the caller can retry with a fresh one.
	CreateRequest(ctx context.Context, history *models.HistoryEntry, queue *models.QueueEntry) error

	GetQueueEntry(ctx context.Context, paymentRef string) (*models.QueueEntry, error)

	// Settle marks the history entry success or failed, refunds the
	// available balance on failure, and removes the queue entry, all in
	// one transaction.
	Settle(ctx context.Context, paymentRef string, success bool) error

	ListQueue(ctx context.Context) ([]*models.QueueEntry, error)
	ListHistory(ctx context.Context, email string) ([]*models.HistoryEntry, error)
}
