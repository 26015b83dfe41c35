// internal/service/checkout/checkout_test.go
package checkout

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"checkout-service/internal/domain/cart"
	"checkout-service/internal/domain/coupon"
	"checkout-service/internal/domain/product"
	"checkout-service/internal/domain/sale"
	"checkout-service/internal/gateway"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSaleStore struct {
	created *sale.Sale
	byID    map[int64]*sale.Sale
	upsells map[int64]string
}

func newFakeSaleStore() *fakeSaleStore {
	return &fakeSaleStore{byID: map[int64]*sale.Sale{}, upsells: map[int64]string{}}
}

func (f *fakeSaleStore) Create(_ context.Context, s *sale.Sale) error {
	s.ID = int64(len(f.byID) + 1)
	s.CreatedAt = time.Now()
	f.created = s
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSaleStore) FindByID(_ context.Context, id int64) (*sale.Sale, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

func (f *fakeSaleStore) FindByTransactionID(_ context.Context, txID string) (*sale.Sale, error) {
	for _, s := range f.byID {
		if s.TransactionID == txID {
			return s, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeSaleStore) SetUpsellTransaction(_ context.Context, id int64, txID string) error {
	f.upsells[id] = txID
	return nil
}

type fakeProductStore struct {
	products map[int64]*product.Product
}

func (f *fakeProductStore) FindByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductStore) FindByIDs(_ context.Context, ids []int64) (map[int64]*product.Product, error) {
	out := map[int64]*product.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeCouponStore struct {
	coupon     *coupon.Coupon
	increments int
}

func (f *fakeCouponStore) FindBySellerAndCode(_ context.Context, _ int64, _ string) (*coupon.Coupon, error) {
	if f.coupon == nil {
		return nil, xerrors.ErrNotFound
	}
	return f.coupon, nil
}

func (f *fakeCouponStore) IncrementUses(_ context.Context, _ int64) (bool, error) {
	f.increments++
	return true, nil
}

type fakeCartStore struct {
	created []*cart.AbandonedCart
}

func (f *fakeCartStore) Create(_ context.Context, c *cart.AbandonedCart) error {
	f.created = append(f.created, c)
	return nil
}

type fakeLeadStore struct {
	leads []string
}

func (f *fakeLeadStore) CreateLead(_ context.Context, _ int64, _, email, _ string) error {
	f.leads = append(f.leads, email)
	return nil
}

type fakeProvider struct {
	cashIns []*gateway.CashInRequest
	status  string
}

func (f *fakeProvider) CreateCashIn(_ context.Context, req *gateway.CashInRequest) (*gateway.CashInResponse, error) {
	f.cashIns = append(f.cashIns, req)
	return &gateway.CashInResponse{
		TransactionID: "tx-abc-123",
		PixCode:       "00020126pixcopypaste",
		QRCodeURL:     "https://gw.example/qr/tx-abc-123",
	}, nil
}

func (f *fakeProvider) GetTransaction(_ context.Context, txID string) (*gateway.Transaction, error) {
	return &gateway.Transaction{ID: txID, Status: f.status}, nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(eventType, _ string, _ interface{}) {
	f.events = append(f.events, eventType)
}

type fixedCommission float64

func (f fixedCommission) CommissionPercent(_ context.Context) float64 { return float64(f) }

func testProducts() map[int64]*product.Product {
	return map[int64]*product.Product{
		10: {ID: 10, SellerID: 1, Name: "Course A", PriceInCents: 15000, Active: true},
		11: {ID: 11, SellerID: 1, Name: "Ebook B", PriceInCents: 4700, Active: true},
		12: {ID: 12, SellerID: 2, Name: "Other Seller", PriceInCents: 9900, Active: true},
		13: {ID: 13, SellerID: 1, Name: "Inactive", PriceInCents: 1000, Active: false},
	}
}

func newCheckoutService(sales *fakeSaleStore, coupons *fakeCouponStore, provider *fakeProvider, publisher *fakePublisher) (*Service, *fakeCartStore, *fakeLeadStore) {
	carts := &fakeCartStore{}
	leads := &fakeLeadStore{}
	svc := NewService(
		sales,
		&fakeProductStore{products: testProducts()},
		coupons,
		carts,
		leads,
		provider,
		publisher,
		fixedCommission(7.9),
		zap.NewNop(),
	)
	return svc, carts, leads
}

func TestCreateCheckout(t *testing.T) {
	sales := newFakeSaleStore()
	provider := &fakeProvider{}
	publisher := &fakePublisher{}
	svc, carts, leads := newCheckoutService(sales, &fakeCouponStore{}, provider, publisher)

	resp, err := svc.CreateCheckout(context.Background(), &sale.CreateCheckoutRequest{
		SellerID: 1,
		Items: []sale.CheckoutItemInput{
			{ProductID: 10},
			{ProductID: 11},
		},
		Customer: sale.CheckoutCustomerInput{
			Name:  "Maria Silva",
			Email: "Maria@Example.COM",
		},
		Tracking: map[string]string{"utm_source": "instagram"},
	}, "200.10.20.30")
	require.NoError(t, err)

	// 15000 + 4700 = 19700, no discount, commission 7.9% = 1556
	assert.Equal(t, int64(19700), resp.TotalAmountInCents)
	assert.Equal(t, int64(0), resp.DiscountInCents)
	assert.Equal(t, "tx-abc-123", resp.TransactionID)
	assert.Equal(t, "00020126pixcopypaste", resp.PixCode)

	created := sales.created
	require.NotNil(t, created)
	assert.Equal(t, sale.SaleStatusWaitingPayment, created.Status)
	assert.Equal(t, int64(1556), created.CommissionInCents)
	assert.Equal(t, "maria@example.com", created.CustomerEmail, "email is stored lowercased")
	assert.Equal(t, "00020126pixcopypaste", created.PixCode.String)

	// prices come from the catalog
	require.Len(t, created.Items, 2)
	assert.Equal(t, int64(15000), created.Items[0].PriceInCents)

	// charge amount matches the computed total
	require.Len(t, provider.cashIns, 1)
	assert.Equal(t, int64(19700), provider.cashIns[0].AmountInCents)

	// abandoned cart and lead recorded
	require.Len(t, carts.created, 1)
	assert.Equal(t, created.ID, carts.created[0].SaleID.Int64)
	assert.Equal(t, []string{"maria@example.com"}, leads.leads)

	assert.Equal(t, []string{"SaleCreated"}, publisher.events)
}

func TestCreateCheckoutWithPercentCoupon(t *testing.T) {
	sales := newFakeSaleStore()
	coupons := &fakeCouponStore{coupon: &coupon.Coupon{
		ID: 5, SellerID: 1, Code: "SAVE10",
		DiscountType: coupon.DiscountTypePercent, Value: 10, Active: true,
	}}
	svc, _, _ := newCheckoutService(sales, coupons, &fakeProvider{}, &fakePublisher{})

	resp, err := svc.CreateCheckout(context.Background(), &sale.CreateCheckoutRequest{
		SellerID:   1,
		Items:      []sale.CheckoutItemInput{{ProductID: 10}, {ProductID: 11}},
		Customer:   sale.CheckoutCustomerInput{Name: "Maria", Email: "m@example.com"},
		CouponCode: "SAVE10",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(1970), resp.DiscountInCents)
	assert.Equal(t, int64(17730), resp.TotalAmountInCents)
	assert.Equal(t, "SAVE10", sales.created.CouponCode.String)
	assert.Equal(t, 1, coupons.increments)
}

func TestCreateCheckoutCouponRejections(t *testing.T) {
	base := func() *coupon.Coupon {
		return &coupon.Coupon{
			ID: 5, SellerID: 1, Code: "SAVE10",
			DiscountType: coupon.DiscountTypePercent, Value: 10, Active: true,
		}
	}

	expired := base()
	expired.ExpiresAt = sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true}

	exhausted := base()
	exhausted.MaxUses = sql.NullInt32{Int32: 3, Valid: true}
	exhausted.CurrentUses = 3

	inactive := base()
	inactive.Active = false

	cases := []struct {
		name    string
		coupon  *coupon.Coupon
		wantErr error
	}{
		{"expired", expired, xerrors.ErrCouponExpired},
		{"usage cap reached", exhausted, xerrors.ErrCouponExhausted},
		{"deactivated", inactive, xerrors.ErrCouponInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			coupons := &fakeCouponStore{coupon: tc.coupon}
			svc, _, _ := newCheckoutService(newFakeSaleStore(), coupons, &fakeProvider{}, &fakePublisher{})

			_, err := svc.CreateCheckout(context.Background(), &sale.CreateCheckoutRequest{
				SellerID:   1,
				Items:      []sale.CheckoutItemInput{{ProductID: 10}},
				Customer:   sale.CheckoutCustomerInput{Name: "Maria", Email: "m@example.com"},
				CouponCode: "SAVE10",
			}, "")
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 0, coupons.increments, "a rejected coupon must not consume a use")
		})
	}
}

func TestCreateCheckoutRejectsForeignProduct(t *testing.T) {
	svc, _, _ := newCheckoutService(newFakeSaleStore(), &fakeCouponStore{}, &fakeProvider{}, &fakePublisher{})

	_, err := svc.CreateCheckout(context.Background(), &sale.CreateCheckoutRequest{
		SellerID: 1,
		Items:    []sale.CheckoutItemInput{{ProductID: 12}},
		Customer: sale.CheckoutCustomerInput{Name: "Maria", Email: "m@example.com"},
	}, "")
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCreateCheckoutRejectsInactiveProduct(t *testing.T) {
	svc, _, _ := newCheckoutService(newFakeSaleStore(), &fakeCouponStore{}, &fakeProvider{}, &fakePublisher{})

	_, err := svc.CreateCheckout(context.Background(), &sale.CreateCheckoutRequest{
		SellerID: 1,
		Items:    []sale.CheckoutItemInput{{ProductID: 13}},
		Customer: sale.CheckoutCustomerInput{Name: "Maria", Email: "m@example.com"},
	}, "")
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCreateCheckoutRejectsEmptyCart(t *testing.T) {
	svc, _, _ := newCheckoutService(newFakeSaleStore(), &fakeCouponStore{}, &fakeProvider{}, &fakePublisher{})

	_, err := svc.CreateCheckout(context.Background(), &sale.CreateCheckoutRequest{
		SellerID: 1,
		Customer: sale.CheckoutCustomerInput{Name: "Maria", Email: "m@example.com"},
	}, "")
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestAcceptUpsell(t *testing.T) {
	sales := newFakeSaleStore()
	sales.byID[7] = &sale.Sale{
		ID: 7, SellerID: 1, SaleReference: "SALE-X", Status: sale.SaleStatusPaid,
		CustomerName: "Maria", CustomerEmail: "m@example.com",
	}

	products := &fakeProductStore{products: map[int64]*product.Product{
		10: {ID: 10, SellerID: 1, Name: "Course A", PriceInCents: 15000, Active: true,
			Offers: product.Offers{Upsell: &product.SubOffer{
				Title: "Mentoria", PriceInCents: 9900, Active: true,
			}}},
	}}

	svc := NewService(sales, products, &fakeCouponStore{}, &fakeCartStore{}, &fakeLeadStore{},
		&fakeProvider{}, &fakePublisher{}, fixedCommission(7.9), zap.NewNop())

	resp, err := svc.AcceptUpsell(context.Background(), &sale.AcceptUpsellRequest{SaleID: 7, ProductID: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(9900), resp.TotalAmountInCents)
	assert.Equal(t, "tx-abc-123", sales.upsells[7])
}

func TestAcceptUpsellRequiresPaidSale(t *testing.T) {
	sales := newFakeSaleStore()
	sales.byID[7] = &sale.Sale{ID: 7, Status: sale.SaleStatusWaitingPayment}

	svc, _, _ := newCheckoutService(sales, &fakeCouponStore{}, &fakeProvider{}, &fakePublisher{})

	_, err := svc.AcceptUpsell(context.Background(), &sale.AcceptUpsellRequest{SaleID: 7, ProductID: 10})
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestAcceptUpsellRejectsSecondAttempt(t *testing.T) {
	sales := newFakeSaleStore()
	sales.byID[7] = &sale.Sale{
		ID: 7, Status: sale.SaleStatusPaid,
		UpsellTransactionID: sql.NullString{String: "tx-up-1", Valid: true},
	}

	svc, _, _ := newCheckoutService(sales, &fakeCouponStore{}, &fakeProvider{}, &fakePublisher{})

	_, err := svc.AcceptUpsell(context.Background(), &sale.AcceptUpsellRequest{SaleID: 7, ProductID: 10})
	require.ErrorIs(t, err, xerrors.ErrConflict)
}
