// internal/repository/postgres/settings_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"checkout-service/internal/domain/settings"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// FindSellerSettings retrieves per-seller integration settings.
func (r *SettingsRepository) FindSellerSettings(ctx context.Context, sellerID int64) (*settings.SellerSettings, error) {
	query := `
		SELECT seller_id, smtp_host, smtp_port, smtp_user, smtp_pass,
		       smtp_from_name, smtp_secure, attribution_enabled, updated_at
		FROM app_settings
		WHERE seller_id = $1
	`
	var s settings.SellerSettings
	err := r.db.QueryRow(ctx, query, sellerID).Scan(
		&s.SellerID, &s.SMTPHost, &s.SMTPPort, &s.SMTPUser, &s.SMTPPass,
		&s.SMTPFromName, &s.SMTPSecure, &s.AttributionEnabled, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find seller settings: %w", err)
	}
	return &s, nil
}

// UpsertSellerSettings writes the whole settings row for a seller.
func (r *SettingsRepository) UpsertSellerSettings(ctx context.Context, s *settings.SellerSettings) error {
	query := `
		INSERT INTO app_settings (
			seller_id, smtp_host, smtp_port, smtp_user, smtp_pass,
			smtp_from_name, smtp_secure, attribution_enabled, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (seller_id) DO UPDATE SET
			smtp_host = EXCLUDED.smtp_host,
			smtp_port = EXCLUDED.smtp_port,
			smtp_user = EXCLUDED.smtp_user,
			smtp_pass = EXCLUDED.smtp_pass,
			smtp_from_name = EXCLUDED.smtp_from_name,
			smtp_secure = EXCLUDED.smtp_secure,
			attribution_enabled = EXCLUDED.attribution_enabled,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		s.SellerID, s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPass,
		s.SMTPFromName, s.SMTPSecure, s.AttributionEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert seller settings: %w", err)
	}
	return nil
}

// FindPlatformSettings retrieves the single platform row.
func (r *SettingsRepository) FindPlatformSettings(ctx context.Context) (*settings.PlatformSettings, error) {
	query := `SELECT id, commission_percent, updated_at FROM platform_settings ORDER BY id LIMIT 1`

	var p settings.PlatformSettings
	err := r.db.QueryRow(ctx, query).Scan(&p.ID, &p.CommissionPercent, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find platform settings: %w", err)
	}
	return &p, nil
}
