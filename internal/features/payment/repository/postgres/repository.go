package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"nftclicks-backend/internal/features/payment/models"
	"nftclicks-backend/internal/features/payment/repository"
	usermodels "nftclicks-backend/internal/features/user/models"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.PaymentRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (reference, payment_id, amount, vpa, status, token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.Reference, payment.PaymentID, payment.Amount, payment.VPA,
		payment.Status, payment.Token, payment.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return repository.ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	query := `
		SELECT reference, payment_id, amount, vpa, status, token, created_at
		FROM payments WHERE reference = $1
	`

	var payment models.Payment
	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&payment.Reference, &payment.PaymentID, &payment.Amount, &payment.VPA,
		&payment.Status, &payment.Token, &payment.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *postgresRepository) ConsumeForActivation(ctx context.Context, reference, email string, newStatus usermodels.Status, limitBump int64, activatedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Conditional flip is the idempotency guard: a second activation with
	// the same reference matches zero rows.
	res, err := tx.ExecContext(ctx, `
		UPDATE payments SET token = $1 WHERE reference = $2 AND token = $3
	`, models.TokenInvalid, reference, models.TokenValid)
	if err != nil {
		return fmt.Errorf("failed to consume payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrPaymentAlreadyUsed
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET status = $1, upload_limit = upload_limit + $2, activated_at = $3
		WHERE email = $4
	`, newStatus, limitBump, activatedAt, email)
	if err != nil {
		return fmt.Errorf("failed to transition user tier: %w", err)
	}

	return tx.Commit()
}
