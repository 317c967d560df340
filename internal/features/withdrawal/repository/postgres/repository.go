package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	usermodels "nftclicks-backend/internal/features/user/models"
	"nftclicks-backend/internal/features/withdrawal/models"
	"nftclicks-backend/internal/features/withdrawal/repository"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.WithdrawalRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateRequest(ctx context.Context, history *models.HistoryEntry, queue *models.QueueEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Conditional debit doubles as the balance check. Only available
	// moves; total keeps the lifetime earnings figure.
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET available = available - $1
		WHERE email = $2 AND available >= $1
	`, history.Amount, history.Email)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO withdrawal_history (payment_ref, user_email, amount, status, requested_at)
		VALUES ($1, $2, $3, $4, $5)
	`, history.PaymentRef, history.Email, history.Amount, history.Status, history.Time)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return repository.ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (user_email, type, amount, level_label)
		VALUES ($1, $2, $3, $4)
	`, history.Email, usermodels.TransactionWithdrawal, history.Amount, repository.LedgerLabel)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO admin_withdrawal_queue
			(payment_ref, user_email, amount, holder_name, account_number, bank_name, ifsc, mobile, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, queue.PaymentRef, queue.Email, queue.Amount, queue.HolderName,
		queue.AccountNumber, queue.BankName, queue.IFSC, queue.Mobile, queue.RequestedAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue entry: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) GetQueueEntry(ctx context.Context, paymentRef string) (*models.QueueEntry, error) {
	query := `
		SELECT payment_ref, user_email, amount, holder_name, account_number, bank_name, ifsc, mobile, requested_at
		FROM admin_withdrawal_queue WHERE payment_ref = $1
	`

	var entry models.QueueEntry
	err := r.db.QueryRowContext(ctx, query, paymentRef).Scan(
		&entry.PaymentRef, &entry.Email, &entry.Amount, &entry.HolderName,
		&entry.AccountNumber, &entry.BankName, &entry.IFSC, &entry.Mobile, &entry.RequestedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrSettlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}

	return &entry, nil
}

func (r *postgresRepository) Settle(ctx context.Context, paymentRef string, success bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		email  string
		amount int64
	)
	err = tx.QueryRowContext(ctx, `
		DELETE FROM admin_withdrawal_queue WHERE payment_ref = $1
		RETURNING user_email, amount
	`, paymentRef).Scan(&email, &amount)
	if err == sql.ErrNoRows {
		return repository.ErrSettlementNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	status := models.StatusSuccess
	if !success {
		status = models.StatusFailed
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE withdrawal_history SET status = $1 WHERE payment_ref = $2
	`, status, paymentRef)
	if err != nil {
		return fmt.Errorf("failed to update history entry: %w", err)
	}

	if !success {
		// Put the held amount back. Total never moved at request time.
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET available = available + $1 WHERE email = $2
		`, amount, email)
		if err != nil {
			return fmt.Errorf("failed to refund balance: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) ListQueue(ctx context.Context) ([]*models.QueueEntry, error) {
	query := `
		SELECT payment_ref, user_email, amount, holder_name, account_number, bank_name, ifsc, mobile, requested_at
		FROM admin_withdrawal_queue ORDER BY requested_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var entries []*models.QueueEntry
	for rows.Next() {
		var entry models.QueueEntry
		err := rows.Scan(
			&entry.PaymentRef, &entry.Email, &entry.Amount, &entry.HolderName,
			&entry.AccountNumber, &entry.BankName, &entry.IFSC, &entry.Mobile, &entry.RequestedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func (r *postgresRepository) ListHistory(ctx context.Context, email string) ([]*models.HistoryEntry, error) {
	query := `
		SELECT payment_ref, user_email, amount, status, requested_at
		FROM withdrawal_history WHERE user_email = $1 ORDER BY requested_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.PaymentRef, &entry.Email, &entry.Amount, &entry.Status, &entry.Time); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
