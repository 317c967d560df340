package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"nftclicks-backend/internal/features/qr/models"
	"nftclicks-backend/internal/features/qr/repository"
)

// defaultVPA seeds the singleton row until an admin sets a real payee.
const defaultVPA = "dummy@upiId"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.QRRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetConfig(ctx context.Context) (*models.UPIConfig, error) {
	var config models.UPIConfig
	err := r.db.QueryRowContext(ctx, `
		SELECT vpa, payee_name FROM qr_config WHERE id = 1
	`).Scan(&config.VPA, &config.PayeeName)
	if err == sql.ErrNoRows {
		seeded := &models.UPIConfig{VPA: defaultVPA}
		if err := r.SetConfig(ctx, seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get qr config: %w", err)
	}

	return &config, nil
}

func (r *postgresRepository) SetConfig(ctx context.Context, config *models.UPIConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO qr_config (id, vpa, payee_name) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET vpa = EXCLUDED.vpa, payee_name = EXCLUDED.payee_name
	`, config.VPA, config.PayeeName)
	if err != nil {
		return fmt.Errorf("failed to set qr config: %w", err)
	}

	return nil
}
