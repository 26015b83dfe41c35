// internal/service/product/product.go
package product

import (
	"context"
	"database/sql"
	"strings"

	"checkout-service/internal/domain/product"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, p *product.Product) error
	FindByID(ctx context.Context, id int64) (*product.Product, error)
	List(ctx context.Context, sellerID int64, f *product.ListFilters) ([]product.Product, int64, error)
	Delete(ctx context.Context, sellerID, id int64) error
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Create(ctx context.Context, sellerID int64, req *product.CreateProductRequest) (*product.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "product name is required")
	}
	if req.PriceInCents <= 0 {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "price must be a positive amount in cents")
	}

	p := &product.Product{
		SellerID:       sellerID,
		Name:           name,
		PriceInCents:   req.PriceInCents,
		Active:         true,
		CheckoutConfig: req.CheckoutConfig,
		Offers:         req.Offers,
		DefaultUTMs:    req.DefaultUTMs,
	}
	if req.Description != "" {
		p.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.DeliveryEmailSubject != "" {
		p.DeliveryEmailSubject = sql.NullString{String: req.DeliveryEmailSubject, Valid: true}
	}
	if req.DeliveryEmailBody != "" {
		p.DeliveryEmailBody = sql.NullString{String: req.DeliveryEmailBody, Valid: true}
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("seller_id", sellerID),
	)
	return p, nil
}

// Get enforces seller ownership; a product belonging to someone else is
// indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, sellerID, id int64) (*product.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, sellerID, id int64, req *product.UpdateProductRequest) (*product.Product, error) {
	p, err := s.Get(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "product name cannot be empty")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.PriceInCents != nil {
		if *req.PriceInCents <= 0 {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "price must be a positive amount in cents")
		}
		p.PriceInCents = *req.PriceInCents
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.CheckoutConfig != nil {
		p.CheckoutConfig = req.CheckoutConfig
	}
	if req.Offers != nil {
		p.Offers = *req.Offers
	}
	if req.DeliveryEmailSubject != nil {
		p.DeliveryEmailSubject = sql.NullString{String: *req.DeliveryEmailSubject, Valid: *req.DeliveryEmailSubject != ""}
	}
	if req.DeliveryEmailBody != nil {
		p.DeliveryEmailBody = sql.NullString{String: *req.DeliveryEmailBody, Valid: *req.DeliveryEmailBody != ""}
	}
	if req.DefaultUTMs != nil {
		p.DefaultUTMs = req.DefaultUTMs
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, sellerID int64, f *product.ListFilters) (*product.ListResponse, error) {
	if f == nil {
		f = &product.ListFilters{}
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

	products, total, err := s.store.List(ctx, sellerID, f)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &product.ListResponse{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) Delete(ctx context.Context, sellerID, id int64) error {
	return s.store.Delete(ctx, sellerID, id)
}
