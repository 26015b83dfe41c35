// internal/service/customer/customer_test.go
package customer

import (
	"context"
	"testing"
	"time"

	"checkout-service/internal/domain/customer"
	xerrors "checkout-service/internal/pkg/errors"
	"checkout-service/internal/service/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	upserts     []*customer.PurchaseInput
	listFilters *customer.ListFilters
	listTotal   int64
}

func (f *fakeStore) UpsertPurchase(_ context.Context, in *customer.PurchaseInput) (*customer.Customer, error) {
	f.upserts = append(f.upserts, in)
	return &customer.Customer{ID: 1, SellerID: in.SellerID, Email: in.Email, TotalOrders: len(f.upserts)}, nil
}

func (f *fakeStore) FindBySellerAndEmail(_ context.Context, sellerID int64, email string) (*customer.Customer, error) {
	return &customer.Customer{ID: 1, SellerID: sellerID, Email: email}, nil
}

func (f *fakeStore) List(_ context.Context, _ int64, filters *customer.ListFilters) ([]customer.Customer, int64, error) {
	f.listFilters = filters
	return []customer.Customer{}, f.listTotal, nil
}

func (f *fakeStore) Stats(_ context.Context, _ int64) (*customer.Stats, error) {
	return &customer.Stats{}, nil
}

func TestRecordPurchaseNormalizesEmail(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	err := svc.RecordPurchase(context.Background(), &payment.PurchaseRecord{
		SellerID:   1,
		Name:       "Maria Silva",
		Email:      "  Maria@Example.COM ",
		SaleID:     42,
		ProductIDs: []int64{10},
		SpentCents: 19700,
		PaidAt:     time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, "maria@example.com", store.upserts[0].Email)
	assert.Equal(t, int64(42), store.upserts[0].SaleID)
}

func TestRecordPurchaseRequiresEmail(t *testing.T) {
	svc := NewService(&fakeStore{}, zap.NewNop())

	err := svc.RecordPurchase(context.Background(), &payment.PurchaseRecord{SellerID: 1, Email: "   "})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestListClampsPagination(t *testing.T) {
	store := &fakeStore{listTotal: 245}
	svc := NewService(store, zap.NewNop())

	resp, err := svc.List(context.Background(), 1, &customer.ListFilters{Page: 0, PageSize: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, store.listFilters.Page)
	assert.Equal(t, 100, store.listFilters.PageSize)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestGetRequiresEmail(t *testing.T) {
	svc := NewService(&fakeStore{}, zap.NewNop())

	_, err := svc.Get(context.Background(), 1, "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	c, err := svc.Get(context.Background(), 1, " MARIA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", c.Email)
}
