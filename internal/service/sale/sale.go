// internal/service/sale/sale.go
package sale

import (
	"context"

	"checkout-service/internal/domain/sale"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type Store interface {
	FindByID(ctx context.Context, id int64) (*sale.Sale, error)
	List(ctx context.Context, sellerID int64, f *sale.ListFilters) ([]sale.Sale, int64, error)
}

// Service is the admin panel's read side over sales. Status changes only
// happen through the payment verifier.
type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Get(ctx context.Context, sellerID, id int64) (*sale.Sale, error) {
	sl, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sl.SellerID != sellerID {
		return nil, xerrors.ErrNotFound
	}
	return sl, nil
}

func (s *Service) List(ctx context.Context, sellerID int64, f *sale.ListFilters) (*sale.ListResponse, error) {
	if f == nil {
		f = &sale.ListFilters{}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}

	sales, total, err := s.store.List(ctx, sellerID, f)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &sale.ListResponse{
		Sales:      sales,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}
