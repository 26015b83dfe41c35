// internal/service/settings/settings.go
package settings

import (
	"context"

	"checkout-service/internal/domain/settings"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type Store interface {
	FindSellerSettings(ctx context.Context, sellerID int64) (*settings.SellerSettings, error)
	UpsertSellerSettings(ctx context.Context, s *settings.SellerSettings) error
	FindPlatformSettings(ctx context.Context) (*settings.PlatformSettings, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetSellerSettings returns the seller's settings, or defaults when none
// were saved yet. Attribution starts enabled: the zero value must not opt a
// seller out before they ever touch the toggle, and a first save that only
// sets SMTP fields inherits this default.
func (s *Service) GetSellerSettings(ctx context.Context, sellerID int64) (*settings.SellerSettings, error) {
	cur, err := s.store.FindSellerSettings(ctx, sellerID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return &settings.SellerSettings{
				SellerID:           sellerID,
				AttributionEnabled: true,
			}, nil
		}
		return nil, err
	}
	return cur, nil
}

func (s *Service) UpdateSellerSettings(ctx context.Context, sellerID int64, req *settings.UpdateSellerSettingsRequest) (*settings.SellerSettings, error) {
	cur, err := s.GetSellerSettings(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if req.SMTPHost != nil {
		cur.SMTPHost = *req.SMTPHost
	}
	if req.SMTPPort != nil {
		cur.SMTPPort = *req.SMTPPort
	}
	if req.SMTPUser != nil {
		cur.SMTPUser = *req.SMTPUser
	}
	if req.SMTPPass != nil {
		cur.SMTPPass = *req.SMTPPass
	}
	if req.SMTPFromName != nil {
		cur.SMTPFromName = *req.SMTPFromName
	}
	if req.SMTPSecure != nil {
		cur.SMTPSecure = *req.SMTPSecure
	}
	if req.AttributionEnabled != nil {
		cur.AttributionEnabled = *req.AttributionEnabled
	}

	if err := s.store.UpsertSellerSettings(ctx, cur); err != nil {
		return nil, err
	}

	s.logger.Info("seller settings updated", zap.Int64("seller_id", sellerID))
	return cur, nil
}

func (s *Service) GetPlatformSettings(ctx context.Context) (*settings.PlatformSettings, error) {
	return s.store.FindPlatformSettings(ctx)
}
