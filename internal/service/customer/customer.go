// internal/service/customer/customer.go
package customer

import (
	"context"
	"strings"

	"checkout-service/internal/domain/customer"
	xerrors "checkout-service/internal/pkg/errors"
	"checkout-service/internal/service/payment"

	"go.uber.org/zap"
)

type Store interface {
	UpsertPurchase(ctx context.Context, in *customer.PurchaseInput) (*customer.Customer, error)
	FindBySellerAndEmail(ctx context.Context, sellerID int64, email string) (*customer.Customer, error)
	List(ctx context.Context, sellerID int64, f *customer.ListFilters) ([]customer.Customer, int64, error)
	Stats(ctx context.Context, sellerID int64) (*customer.Stats, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// RecordPurchase folds one confirmed sale into the seller's customer record,
// creating it on first purchase. Keyed on (seller, email) so repeat buyers
// accumulate totals instead of duplicating rows.
func (s *Service) RecordPurchase(ctx context.Context, in *payment.PurchaseRecord) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "customer email is required")
	}

	c, err := s.store.UpsertPurchase(ctx, &customer.PurchaseInput{
		SellerID:   in.SellerID,
		Name:       in.Name,
		Email:      email,
		Whatsapp:   in.Whatsapp,
		SaleID:     in.SaleID,
		ProductIDs: in.ProductIDs,
		SpentCents: in.SpentCents,
		PaidAt:     in.PaidAt,
	})
	if err != nil {
		return err
	}

	s.logger.Info("customer purchase recorded",
		zap.Int64("customer_id", c.ID),
		zap.Int64("seller_id", in.SellerID),
		zap.Int("total_orders", c.TotalOrders),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, sellerID int64, email string) (*customer.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "email is required")
	}
	return s.store.FindBySellerAndEmail(ctx, sellerID, email)
}

func (s *Service) List(ctx context.Context, sellerID int64, f *customer.ListFilters) (*customer.ListResponse, error) {
	if f == nil {
		f = &customer.ListFilters{}
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

	customers, total, err := s.store.List(ctx, sellerID, f)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &customer.ListResponse{
		Customers:  customers,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) Stats(ctx context.Context, sellerID int64) (*customer.Stats, error) {
	return s.store.Stats(ctx, sellerID)
}
