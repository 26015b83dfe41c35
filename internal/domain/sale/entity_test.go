// internal/domain/sale/entity_test.go
package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceTo(t *testing.T) {
	cases := []struct {
		from SaleStatus
		to   SaleStatus
		want bool
	}{
		{SaleStatusWaitingPayment, SaleStatusPaid, true},
		{SaleStatusWaitingPayment, SaleStatusExpired, true},
		{SaleStatusWaitingPayment, SaleStatusCancelled, true},
		{SaleStatusWaitingPayment, SaleStatusFailed, true},
		{SaleStatusPaid, SaleStatusExpired, false},
		{SaleStatusPaid, SaleStatusWaitingPayment, false},
		{SaleStatusExpired, SaleStatusPaid, false},
		{SaleStatusWaitingPayment, SaleStatusWaitingPayment, false},
		{SaleStatus("bogus"), SaleStatusPaid, false},
		{SaleStatusWaitingPayment, SaleStatus("bogus"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanAdvanceTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, SaleStatusWaitingPayment.IsTerminal())
	assert.True(t, SaleStatusPaid.IsTerminal())
	assert.True(t, SaleStatusExpired.IsTerminal())
	assert.True(t, SaleStatusCancelled.IsTerminal())
	assert.True(t, SaleStatusFailed.IsTerminal())
}
