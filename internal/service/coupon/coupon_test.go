// internal/service/coupon/coupon_test.go
package coupon

import (
	"context"
	"testing"
	"time"

	"checkout-service/internal/domain/coupon"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	byID      map[int64]*coupon.Coupon
	createErr error
	updated   *coupon.Coupon
}

func (f *fakeStore) Create(_ context.Context, c *coupon.Coupon) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = int64(len(f.byID) + 1)
	if f.byID == nil {
		f.byID = map[int64]*coupon.Coupon{}
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*coupon.Coupon, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) Update(_ context.Context, c *coupon.Coupon) error {
	f.updated = c
	return nil
}

func (f *fakeStore) ListBySeller(_ context.Context, sellerID int64) ([]coupon.Coupon, error) {
	var out []coupon.Coupon
	for _, c := range f.byID {
		if c.SellerID == sellerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, _, id int64) error {
	delete(f.byID, id)
	return nil
}

func TestCreateUppercasesCode(t *testing.T) {
	svc := NewService(&fakeStore{}, zap.NewNop())

	c, err := svc.Create(context.Background(), 1, &coupon.CreateCouponRequest{
		Code: "  save10 ", DiscountType: coupon.DiscountTypePercent, Value: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", c.Code)
	assert.True(t, c.Active)
}

func TestCreateValidatesValue(t *testing.T) {
	cases := []struct {
		name  string
		dt    coupon.DiscountType
		value int64
		ok    bool
	}{
		{"percent 1", coupon.DiscountTypePercent, 1, true},
		{"percent 100", coupon.DiscountTypePercent, 100, true},
		{"percent 0", coupon.DiscountTypePercent, 0, false},
		{"percent 101", coupon.DiscountTypePercent, 101, false},
		{"fixed positive", coupon.DiscountTypeFixed, 500, true},
		{"fixed zero", coupon.DiscountTypeFixed, 0, false},
		{"unknown type", coupon.DiscountType("bogus"), 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeStore{}, zap.NewNop())
			_, err := svc.Create(context.Background(), 1, &coupon.CreateCouponRequest{
				Code: "X", DiscountType: tc.dt, Value: tc.value,
			})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
			}
		})
	}
}

func TestCreateRequiresCode(t *testing.T) {
	svc := NewService(&fakeStore{}, zap.NewNop())

	_, err := svc.Create(context.Background(), 1, &coupon.CreateCouponRequest{
		Code: "   ", DiscountType: coupon.DiscountTypePercent, Value: 10,
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCreateMapsDuplicate(t *testing.T) {
	svc := NewService(&fakeStore{createErr: xerrors.ErrDuplicateEntry}, zap.NewNop())

	_, err := svc.Create(context.Background(), 1, &coupon.CreateCouponRequest{
		Code: "SAVE10", DiscountType: coupon.DiscountTypePercent, Value: 10,
	})
	assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)
}

func TestUpdateRevalidatesAgainstExistingType(t *testing.T) {
	store := &fakeStore{byID: map[int64]*coupon.Coupon{
		5: {ID: 5, SellerID: 1, Code: "SAVE10",
			DiscountType: coupon.DiscountTypePercent, Value: 10, Active: true},
	}}
	svc := NewService(store, zap.NewNop())

	badValue := int64(150)
	_, err := svc.Update(context.Background(), 1, 5, &coupon.UpdateCouponRequest{Value: &badValue})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	newValue := int64(25)
	expires := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	c, err := svc.Update(context.Background(), 1, 5, &coupon.UpdateCouponRequest{
		Value: &newValue, ExpiresAt: &expires,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), c.Value)
	assert.Equal(t, expires, c.ExpiresAt.Time)
	require.NotNil(t, store.updated)
}

func TestUpdateHidesOtherSellersCoupon(t *testing.T) {
	store := &fakeStore{byID: map[int64]*coupon.Coupon{
		5: {ID: 5, SellerID: 2, DiscountType: coupon.DiscountTypePercent, Value: 10},
	}}
	svc := NewService(store, zap.NewNop())

	active := false
	_, err := svc.Update(context.Background(), 1, 5, &coupon.UpdateCouponRequest{Active: &active})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
