// internal/service/checkout/commission.go
package checkout

import (
	"context"

	"checkout-service/internal/domain/settings"
)

type platformSettingsStore interface {
	FindPlatformSettings(ctx context.Context) (*settings.PlatformSettings, error)
}

// PlatformCommission resolves the commission split from the platform
// settings row, falling back to the configured default when the row is
// missing or unreadable.
type PlatformCommission struct {
	store    platformSettingsStore
	fallback float64
}

func NewPlatformCommission(store platformSettingsStore, fallback float64) *PlatformCommission {
	return &PlatformCommission{store: store, fallback: fallback}
}

func (p *PlatformCommission) CommissionPercent(ctx context.Context) float64 {
	s, err := p.store.FindPlatformSettings(ctx)
	if err != nil || s == nil || s.CommissionPercent <= 0 {
		return p.fallback
	}
	return s.CommissionPercent
}
