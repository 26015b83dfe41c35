// internal/service/checkout/checkout.go
package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"checkout-service/internal/domain/cart"
	"checkout-service/internal/domain/coupon"
	"checkout-service/internal/domain/product"
	"checkout-service/internal/domain/sale"
	"checkout-service/internal/events"
	"checkout-service/internal/gateway"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type SaleStore interface {
	Create(ctx context.Context, s *sale.Sale) error
	FindByID(ctx context.Context, id int64) (*sale.Sale, error)
	FindByTransactionID(ctx context.Context, txID string) (*sale.Sale, error)
	SetUpsellTransaction(ctx context.Context, id int64, txID string) error
}

type ProductStore interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*product.Product, error)
}

type CouponStore interface {
	FindBySellerAndCode(ctx context.Context, sellerID int64, code string) (*coupon.Coupon, error)
	IncrementUses(ctx context.Context, id int64) (bool, error)
}

type CartStore interface {
	Create(ctx context.Context, c *cart.AbandonedCart) error
}

type LeadStore interface {
	CreateLead(ctx context.Context, sellerID int64, name, email, whatsapp string) error
}

type CommissionSource interface {
	CommissionPercent(ctx context.Context) float64
}

// Service creates PIX charges for checkouts and post-purchase upsells.
type Service struct {
	sales      SaleStore
	products   ProductStore
	coupons    CouponStore
	carts      CartStore
	leads      LeadStore
	provider   gateway.Provider
	publisher  events.Publisher
	commission CommissionSource
	logger     *zap.Logger
}

func NewService(
	sales SaleStore,
	products ProductStore,
	coupons CouponStore,
	carts CartStore,
	leads LeadStore,
	provider gateway.Provider,
	publisher events.Publisher,
	commission CommissionSource,
	logger *zap.Logger,
) *Service {
	return &Service{
		sales:      sales,
		products:   products,
		coupons:    coupons,
		carts:      carts,
		leads:      leads,
		provider:   provider,
		publisher:  publisher,
		commission: commission,
		logger:     logger,
	}
}

// CreateCheckout validates the cart, creates the gateway charge, persists the
// pending sale and returns the PIX payment data. Gateway and database errors
// propagate to the caller; there is no retry here.
func (s *Service) CreateCheckout(ctx context.Context, req *sale.CreateCheckoutRequest, clientIP string) (*sale.CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart has no items", xerrors.ErrInvalidInput)
	}
	if req.Customer.Name == "" || req.Customer.Email == "" {
		return nil, fmt.Errorf("%w: customer name and email are required", xerrors.ErrInvalidInput)
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	// Prices come from the catalog, never from the client.
	var items []sale.Item
	var originalTotal int64
	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d not found", xerrors.ErrInvalidInput, it.ProductID)
		}
		if p.SellerID != req.SellerID {
			return nil, fmt.Errorf("%w: product %d does not belong to seller", xerrors.ErrInvalidInput, it.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: product %d is not active", xerrors.ErrInvalidInput, it.ProductID)
		}

		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, sale.Item{
			ProductID:    p.ID,
			Name:         p.Name,
			Quantity:     qty,
			PriceInCents: p.PriceInCents,
		})
		originalTotal += p.PriceInCents * int64(qty)
	}

	var discount int64
	var appliedCoupon *coupon.Coupon
	if req.CouponCode != "" {
		appliedCoupon, err = s.coupons.FindBySellerAndCode(ctx, req.SellerID, req.CouponCode)
		if err != nil {
			return nil, fmt.Errorf("coupon lookup failed: %w", err)
		}
		switch {
		case !appliedCoupon.Active:
			return nil, xerrors.ErrCouponInvalid
		case appliedCoupon.Expired(time.Now()):
			return nil, xerrors.ErrCouponExpired
		case appliedCoupon.Exhausted():
			return nil, xerrors.ErrCouponExhausted
		case appliedCoupon.ProductID.Valid && !containsID(ids, appliedCoupon.ProductID.Int64):
			return nil, xerrors.ErrCouponInvalid
		}
		discount, err = CouponDiscount(appliedCoupon, originalTotal)
		if err != nil {
			return nil, err
		}
	}

	total := originalTotal - discount
	commissionPct := s.commission.CommissionPercent(ctx)
	commission := CommissionCents(total, commissionPct)

	cashIn, err := s.provider.CreateCashIn(ctx, &gateway.CashInRequest{
		AmountInCents: total,
		Description:   items[0].Name,
		PayerName:     req.Customer.Name,
		PayerEmail:    req.Customer.Email,
		ExternalRef:   ulid.Make().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("charge creation failed: %w", err)
	}

	newSale := &sale.Sale{
		SaleReference: "SALE-" + ulid.Make().String(),
		SellerID:      req.SellerID,
		TransactionID: cashIn.TransactionID,
		Items:         items,
		CustomerName:  req.Customer.Name,
		CustomerEmail: strings.ToLower(req.Customer.Email),
		CustomerWhatsapp: sql.NullString{
			String: req.Customer.Whatsapp, Valid: req.Customer.Whatsapp != "",
		},
		CustomerIP:            sql.NullString{String: clientIP, Valid: clientIP != ""},
		PaymentMethod:         sale.PaymentMethodPix,
		Status:                sale.SaleStatusWaitingPayment,
		PixCode:               sql.NullString{String: cashIn.PixCode, Valid: cashIn.PixCode != ""},
		TotalAmountInCents:    total,
		OriginalAmountInCents: originalTotal,
		DiscountInCents:       discount,
		CommissionInCents:     commission,
		Tracking:              req.Tracking,
	}
	if appliedCoupon != nil {
		newSale.CouponCode = sql.NullString{String: appliedCoupon.Code, Valid: true}
	}

	if err := s.sales.Create(ctx, newSale); err != nil {
		return nil, fmt.Errorf("failed to persist sale: %w", err)
	}

	if appliedCoupon != nil {
		if ok, err := s.coupons.IncrementUses(ctx, appliedCoupon.ID); err != nil {
			s.logger.Warn("failed to increment coupon uses",
				zap.Int64("coupon_id", appliedCoupon.ID), zap.Error(err))
		} else if !ok {
			s.logger.Warn("coupon usage cap hit after charge creation",
				zap.Int64("coupon_id", appliedCoupon.ID))
		}
	}

	s.recordAbandonedCart(ctx, newSale)

	// Re-read by transaction id to confirm write visibility before answering
	// the checkout page.
	if _, err := s.sales.FindByTransactionID(ctx, cashIn.TransactionID); err != nil {
		return nil, fmt.Errorf("sale not visible after write: %w", err)
	}

	s.publisher.Publish(events.EventSaleCreated, newSale.SaleReference, events.SaleCreatedPayload{
		SaleID:             newSale.ID,
		SellerID:           newSale.SellerID,
		TransactionID:      newSale.TransactionID,
		TotalAmountInCents: newSale.TotalAmountInCents,
		CustomerEmail:      newSale.CustomerEmail,
	})

	s.logger.Info("checkout created",
		zap.Int64("sale_id", newSale.ID),
		zap.String("transaction_id", newSale.TransactionID),
		zap.Int64("total_amount_in_cents", newSale.TotalAmountInCents),
	)

	return &sale.CheckoutResponse{
		SaleID:             newSale.ID,
		SaleReference:      newSale.SaleReference,
		TransactionID:      newSale.TransactionID,
		TotalAmountInCents: newSale.TotalAmountInCents,
		DiscountInCents:    discount,
		PixCode:            cashIn.PixCode,
		PixQRCodeURL:       cashIn.QRCodeURL,
		ExpiresAt:          cashIn.ExpiresAt,
	}, nil
}

// AcceptUpsell creates the second charge for a post-purchase offer tied to
// the original sale.
func (s *Service) AcceptUpsell(ctx context.Context, req *sale.AcceptUpsellRequest) (*sale.CheckoutResponse, error) {
	original, err := s.sales.FindByID(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}
	if original.Status != sale.SaleStatusPaid {
		return nil, fmt.Errorf("%w: upsell requires a paid sale", xerrors.ErrInvalidInput)
	}
	if original.UpsellTransactionID.Valid {
		return nil, fmt.Errorf("%w: upsell already accepted", xerrors.ErrConflict)
	}

	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	offer := p.Offers.Upsell
	if offer == nil || !offer.Active {
		return nil, fmt.Errorf("%w: product has no active upsell offer", xerrors.ErrInvalidInput)
	}

	cashIn, err := s.provider.CreateCashIn(ctx, &gateway.CashInRequest{
		AmountInCents: offer.PriceInCents,
		Description:   offer.Title,
		PayerName:     original.CustomerName,
		PayerEmail:    original.CustomerEmail,
		ExternalRef:   ulid.Make().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsell charge creation failed: %w", err)
	}

	if err := s.sales.SetUpsellTransaction(ctx, original.ID, cashIn.TransactionID); err != nil {
		return nil, fmt.Errorf("failed to attach upsell transaction: %w", err)
	}

	s.logger.Info("upsell accepted",
		zap.Int64("sale_id", original.ID),
		zap.String("upsell_transaction_id", cashIn.TransactionID),
	)

	return &sale.CheckoutResponse{
		SaleID:             original.ID,
		SaleReference:      original.SaleReference,
		TransactionID:      cashIn.TransactionID,
		TotalAmountInCents: offer.PriceInCents,
		PixCode:            cashIn.PixCode,
		PixQRCodeURL:       cashIn.QRCodeURL,
		ExpiresAt:          cashIn.ExpiresAt,
	}, nil
}

// recordAbandonedCart snapshots the checkout for reminder emails and creates
// a lead-stage customer row. Best effort: failures are logged, the checkout
// still succeeds.
func (s *Service) recordAbandonedCart(ctx context.Context, newSale *sale.Sale) {
	names := make([]string, 0, len(newSale.Items))
	for _, it := range newSale.Items {
		names = append(names, it.Name)
	}

	c := &cart.AbandonedCart{
		SellerID:         newSale.SellerID,
		SaleID:           sql.NullInt64{Int64: newSale.ID, Valid: true},
		CustomerName:     newSale.CustomerName,
		CustomerEmail:    newSale.CustomerEmail,
		CustomerWhatsapp: newSale.CustomerWhatsapp,
		ProductNames:     names,
		TotalInCents:     newSale.TotalAmountInCents,
	}
	if err := s.carts.Create(ctx, c); err != nil {
		s.logger.Warn("failed to record abandoned cart", zap.Int64("sale_id", newSale.ID), zap.Error(err))
	}

	if err := s.leads.CreateLead(ctx, newSale.SellerID, newSale.CustomerName, newSale.CustomerEmail, newSale.CustomerWhatsapp.String); err != nil {
		s.logger.Warn("failed to record lead", zap.Int64("sale_id", newSale.ID), zap.Error(err))
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
