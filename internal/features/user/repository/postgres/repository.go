package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"nftclicks-backend/internal/features/user/models"
	"nftclicks-backend/internal/features/user/repository"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.UserRepository {
	return &postgresRepository{db: db}
}

const userColumns = `email, username, password_hash, sponsor_id, invite_code, status,
		upload_limit, total, available, referral, team, level, autobot, today,
		bank_holder, bank_account, bank_name, bank_ifsc, bank_mobile,
		signed_up_at, activated_at`

func (r *postgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, sponsor_id, invite_code, status,
			upload_limit, total, available, referral, team, level, autobot, today, signed_up_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.SponsorID, user.InviteCode,
		user.Status, user.UploadLimit,
		user.Wallet.Total, user.Wallet.Available, user.Wallet.Referral,
		user.Wallet.Team, user.Wallet.Level, user.Wallet.Autobot, user.Wallet.Today,
		user.SignedUpAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			if pqErr.Constraint == "users_sponsor_id_key" {
				return repository.ErrSponsorCodeTaken
			}
			return repository.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresRepository) GetBySponsorID(ctx context.Context, sponsorID string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE sponsor_id = $1`, userColumns)
	return r.scanUser(r.db.QueryRowContext(ctx, query, sponsorID))
}

func (r *postgresRepository) FindDownlines(ctx context.Context, sponsorID string) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE invite_code = $1 ORDER BY signed_up_at`, userColumns)

	rows, err := r.db.QueryContext(ctx, query, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list downlines: %w", err)
	}
	defer rows.Close()

	return r.collectUsers(rows)
}

func (r *postgresRepository) UpdateBank(ctx context.Context, email string, bank *models.Bank) error {
	query := `
		UPDATE users
		SET bank_holder = $1, bank_account = $2, bank_name = $3, bank_ifsc = $4, bank_mobile = $5
		WHERE email = $6
	`

	res, err := r.db.ExecContext(ctx, query,
		bank.HolderName, bank.AccountNumber, bank.BankName, bank.IFSC, bank.Mobile, email)
	if err != nil {
		return fmt.Errorf("failed to update bank details: %w", err)
	}

	return requireRow(res, repository.ErrUserNotFound)
}

var bucketColumns = map[models.Bucket]string{
	models.BucketReferral: "referral",
	models.BucketTeam:     "team",
	models.BucketLevel:    "level",
	models.BucketAutobot:  "autobot",
}

func (r *postgresRepository) CreditWallet(ctx context.Context, email string, bucket models.Bucket, amount int64, entry models.Transaction) error {
	column, ok := bucketColumns[bucket]
	if !ok {
		return fmt.Errorf("unknown wallet bucket %q", bucket)
	}
	if amount < 0 {
		return fmt.Errorf("negative credit amount %d", amount)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Atomic add, never a snapshot overwrite: concurrent walks sharing an
	// ancestor must both land.
	query := fmt.Sprintf(`
		UPDATE users
		SET total = total + $1, available = available + $1, %s = %s + $1
		WHERE email = $2
	`, column, column)

	res, err := tx.ExecContext(ctx, query, amount, email)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	if err := requireRow(res, repository.ErrUserNotFound); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (user_email, type, amount, level_label)
		VALUES ($1, $2, $3, $4)
	`, email, entry.Type, entry.Amount, entry.Level)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) ApplyUploadCredit(ctx context.Context, email string, count int64) error {
	query := `
		UPDATE users
		SET upload_limit = upload_limit - $1,
			today = today + $1,
			available = available + $1,
			total = total + $1
		WHERE email = $2 AND upload_limit >= $1
	`

	res, err := r.db.ExecContext(ctx, query, count, email)
	if err != nil {
		return fmt.Errorf("failed to apply upload credit: %w", err)
	}

	return requireRow(res, repository.ErrLimitExceeded)
}

func (r *postgresRepository) ListTransactions(ctx context.Context, email string) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, amount, level_label FROM transactions
		WHERE user_email = $1 ORDER BY id
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var entries []models.Transaction
	for rows.Next() {
		var entry models.Transaction
		if err := rows.Scan(&entry.Type, &entry.Amount, &entry.Level); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY signed_up_at`, userColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return r.collectUsers(rows)
}

func (r *postgresRepository) ResetQuota(ctx context.Context, email string, limit int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET upload_limit = $1, today = 0 WHERE email = $2
	`, limit, email)
	if err != nil {
		return fmt.Errorf("failed to reset quota: %w", err)
	}

	return requireRow(res, repository.ErrUserNotFound)
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by status: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresRepository) scanUser(row rowScanner) (*models.User, error) {
	var (
		user        models.User
		bankHolder  sql.NullString
		bankAccount sql.NullString
		bankName    sql.NullString
		bankIFSC    sql.NullString
		bankMobile  sql.NullString
		activatedAt sql.NullTime
	)

	err := row.Scan(
		&user.Email, &user.Username, &user.PasswordHash, &user.SponsorID,
		&user.InviteCode, &user.Status, &user.UploadLimit,
		&user.Wallet.Total, &user.Wallet.Available, &user.Wallet.Referral,
		&user.Wallet.Team, &user.Wallet.Level, &user.Wallet.Autobot, &user.Wallet.Today,
		&bankHolder, &bankAccount, &bankName, &bankIFSC, &bankMobile,
		&user.SignedUpAt, &activatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if bankAccount.Valid {
		user.Bank = &models.Bank{
			HolderName:    bankHolder.String,
			AccountNumber: bankAccount.String,
			BankName:      bankName.String,
			IFSC:          bankIFSC.String,
			Mobile:        bankMobile.String,
		}
	}
	if activatedAt.Valid {
		user.ActivatedAt = activatedAt.Time
	}

	return &user, nil
}

func (r *postgresRepository) collectUsers(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return missing
	}
	return nil
}
