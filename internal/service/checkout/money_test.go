// internal/service/checkout/money_test.go
package checkout

import (
	"testing"

	"checkout-service/internal/domain/coupon"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponDiscount(t *testing.T) {
	tests := []struct {
		name       string
		coupon     *coupon.Coupon
		totalCents int64
		want       int64
		wantErr    error
	}{
		{
			name:       "ten percent",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypePercent, Value: 10},
			totalCents: 19700,
			want:       1970,
		},
		{
			name:       "percent rounds down",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypePercent, Value: 33},
			totalCents: 1000,
			want:       330,
		},
		{
			name:       "percent floors fractional cents",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypePercent, Value: 7},
			totalCents: 999,
			want:       69, // 69.93 floors to 69
		},
		{
			name:       "hundred percent",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypePercent, Value: 100},
			totalCents: 5000,
			want:       5000,
		},
		{
			name:       "percent above range rejected",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypePercent, Value: 101},
			totalCents: 5000,
			wantErr:    xerrors.ErrCouponInvalid,
		},
		{
			name:       "percent zero rejected",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypePercent, Value: 0},
			totalCents: 5000,
			wantErr:    xerrors.ErrCouponInvalid,
		},
		{
			name:       "fixed amount",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypeFixed, Value: 1500},
			totalCents: 19700,
			want:       1500,
		},
		{
			name:       "fixed clamped to total",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypeFixed, Value: 30000},
			totalCents: 19700,
			want:       19700,
		},
		{
			name:       "fixed zero rejected",
			coupon:     &coupon.Coupon{DiscountType: coupon.DiscountTypeFixed, Value: 0},
			totalCents: 19700,
			wantErr:    xerrors.ErrCouponInvalid,
		},
		{
			name:       "unknown type rejected",
			coupon:     &coupon.Coupon{DiscountType: "bogus", Value: 10},
			totalCents: 19700,
			wantErr:    xerrors.ErrCouponInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CouponDiscount(tt.coupon, tt.totalCents)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommissionCents(t *testing.T) {
	tests := []struct {
		name       string
		totalCents int64
		percent    float64
		want       int64
	}{
		{"standard rate", 19700, 7.9, 1556}, // 1556.3 rounds to 1556
		{"rounds up", 1010, 7.9, 80},        // 79.79 rounds to 80
		{"zero percent", 19700, 0, 0},
		{"negative percent", 19700, -1, 0},
		{"zero total", 0, 7.9, 0},
		{"small total", 10, 7.9, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommissionCents(tt.totalCents, tt.percent))
		})
	}
}
