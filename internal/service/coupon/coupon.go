// internal/service/coupon/coupon.go
package coupon

import (
	"context"
	"database/sql"
	"strings"

	"checkout-service/internal/domain/coupon"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, c *coupon.Coupon) error
	FindByID(ctx context.Context, id int64) (*coupon.Coupon, error)
	Update(ctx context.Context, c *coupon.Coupon) error
	ListBySeller(ctx context.Context, sellerID int64) ([]coupon.Coupon, error)
	Delete(ctx context.Context, sellerID, id int64) error
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func validateValue(dt coupon.DiscountType, value int64) error {
	switch dt {
	case coupon.DiscountTypePercent:
		if value < 1 || value > 100 {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "percent discount must be between 1 and 100")
		}
	case coupon.DiscountTypeFixed:
		if value <= 0 {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "fixed discount must be a positive amount in cents")
		}
	default:
		return xerrors.Wrap(xerrors.ErrInvalidInput, "discount type must be percent or fixed")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sellerID int64, req *coupon.CreateCouponRequest) (*coupon.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "coupon code is required")
	}
	if err := validateValue(req.DiscountType, req.Value); err != nil {
		return nil, err
	}

	c := &coupon.Coupon{
		SellerID:     sellerID,
		Code:         code,
		DiscountType: req.DiscountType,
		Value:        req.Value,
		Active:       true,
	}
	if req.ProductID != nil {
		c.ProductID = sql.NullInt64{Int64: *req.ProductID, Valid: true}
	}
	if req.MaxUses != nil {
		c.MaxUses = sql.NullInt32{Int32: *req.MaxUses, Valid: true}
	}
	if req.ExpiresAt != nil {
		c.ExpiresAt = sql.NullTime{Time: *req.ExpiresAt, Valid: true}
	}

	if err := s.store.Create(ctx, c); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, xerrors.Wrap(xerrors.ErrDuplicateEntry, "a coupon with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("coupon created",
		zap.Int64("coupon_id", c.ID),
		zap.Int64("seller_id", sellerID),
		zap.String("code", code),
	)
	return c, nil
}

func (s *Service) Update(ctx context.Context, sellerID, id int64, req *coupon.UpdateCouponRequest) (*coupon.Coupon, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.SellerID != sellerID {
		return nil, xerrors.ErrNotFound
	}

	if req.Value != nil {
		if err := validateValue(c.DiscountType, *req.Value); err != nil {
			return nil, err
		}
		c.Value = *req.Value
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if req.MaxUses != nil {
		c.MaxUses = sql.NullInt32{Int32: *req.MaxUses, Valid: true}
	}
	if req.ExpiresAt != nil {
		c.ExpiresAt = sql.NullTime{Time: *req.ExpiresAt, Valid: true}
	}

	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, sellerID int64) (*coupon.ListResponse, error) {
	coupons, err := s.store.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &coupon.ListResponse{Coupons: coupons, Total: int64(len(coupons))}, nil
}

func (s *Service) Delete(ctx context.Context, sellerID, id int64) error {
	return s.store.Delete(ctx, sellerID, id)
}
