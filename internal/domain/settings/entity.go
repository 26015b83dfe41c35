// internal/domain/settings/entity.go
package settings

import "time"

// SellerSettings holds per-seller integrations: the SMTP account used for
// transactional email and attribution defaults. Missing fields fall back to
// the platform-level env configuration.
type SellerSettings struct {
	SellerID int64 `json:"seller_id" db:"seller_id"`

	SMTPHost     string `json:"smtp_host" db:"smtp_host"`
	SMTPPort     string `json:"smtp_port" db:"smtp_port"`
	SMTPUser     string `json:"smtp_user" db:"smtp_user"`
	SMTPPass     string `json:"-" db:"smtp_pass"`
	SMTPFromName string `json:"smtp_from_name" db:"smtp_from_name"`
	SMTPSecure   bool   `json:"smtp_secure" db:"smtp_secure"`

	AttributionEnabled bool `json:"attribution_enabled" db:"attribution_enabled"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PlatformSettings is the single platform-wide row (commission split etc).
type PlatformSettings struct {
	ID                int64     `json:"id" db:"id"`
	CommissionPercent float64   `json:"commission_percent" db:"commission_percent"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateSellerSettingsRequest struct {
	SMTPHost           *string `json:"smtp_host"`
	SMTPPort           *string `json:"smtp_port"`
	SMTPUser           *string `json:"smtp_user"`
	SMTPPass           *string `json:"smtp_pass"`
	SMTPFromName       *string `json:"smtp_from_name"`
	SMTPSecure         *bool   `json:"smtp_secure"`
	AttributionEnabled *bool   `json:"attribution_enabled"`
}
