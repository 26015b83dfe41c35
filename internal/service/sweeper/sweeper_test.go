// internal/service/sweeper/sweeper_test.go
package sweeper

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"checkout-service/internal/domain/cart"
	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/sale"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSaleSource struct {
	pending []sale.Sale
	byID    map[int64]*sale.Sale
}

func (f *fakeSaleSource) FindPendingBetween(_ context.Context, _, _ time.Time) ([]sale.Sale, error) {
	return f.pending, nil
}

func (f *fakeSaleSource) FindByID(_ context.Context, id int64) (*sale.Sale, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

type fakeVerifier struct {
	verified []string
	failOn   string
}

func (f *fakeVerifier) Verify(_ context.Context, txID string) error {
	f.verified = append(f.verified, txID)
	if txID == f.failOn {
		return errors.New("gateway unavailable")
	}
	return nil
}

type fakeCartSource struct {
	due      map[string][]cart.AbandonedCart
	markWins bool
	marked   []string
}

func (f *fakeCartSource) FindDueForStep(_ context.Context, step string, _ time.Time) ([]cart.AbandonedCart, error) {
	return f.due[step], nil
}

func (f *fakeCartSource) MarkStepSent(_ context.Context, id int64, step string) (bool, error) {
	f.marked = append(f.marked, step)
	return f.markWins, nil
}

type fakeOutbox struct{ rows []*outbox.Row }

func (f *fakeOutbox) Enqueue(_ context.Context, row *outbox.Row) error {
	f.rows = append(f.rows, row)
	return nil
}

func testConfig() Config {
	return Config{
		PendingLookback:    24 * time.Hour,
		PendingMinAge:      5 * time.Minute,
		PixReminderDelay:   15 * time.Minute,
		AbandonedCartDelay: 2 * time.Hour,
	}
}

func TestReverifyPending(t *testing.T) {
	sales := &fakeSaleSource{pending: []sale.Sale{
		{ID: 1, TransactionID: "tx-1"},
		{ID: 2, TransactionID: "tx-2"},
		{ID: 3, TransactionID: "tx-3"},
	}}
	verifier := &fakeVerifier{failOn: "tx-2"}
	svc := NewService(sales, &fakeCartSource{}, &fakeOutbox{}, verifier, testConfig(), zap.NewNop())

	res, err := svc.ReverifyPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"tx-1", "tx-2", "tx-3"}, verifier.verified,
		"one failure must not stop the sweep")
}

func TestSendRemindersEnqueuesPixReminder(t *testing.T) {
	sales := &fakeSaleSource{byID: map[int64]*sale.Sale{
		9: {ID: 9, Status: sale.SaleStatusWaitingPayment,
			PixCode: sql.NullString{String: "00020126pix", Valid: true}},
	}}
	carts := &fakeCartSource{markWins: true, due: map[string][]cart.AbandonedCart{
		cart.StepPixReminder: {{
			ID: 3, SellerID: 1,
			SaleID:        sql.NullInt64{Int64: 9, Valid: true},
			CustomerName:  "Maria",
			CustomerEmail: "maria@example.com",
			ProductNames:  []string{"Course A"},
			TotalInCents:  19700,
		}},
	}}
	ob := &fakeOutbox{}
	svc := NewService(sales, carts, ob, &fakeVerifier{}, testConfig(), zap.NewNop())

	res, err := svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Enqueued)

	require.Len(t, ob.rows, 1)
	row := ob.rows[0]
	assert.Equal(t, outbox.KindReminderEmail, row.Kind)
	assert.Equal(t, "cart:3:step:pix_reminder", row.IdempotencyKey)

	var payload outbox.ReminderEmailPayload
	require.NoError(t, json.Unmarshal(row.Payload, &payload))
	assert.Equal(t, cart.StepPixReminder, payload.Step)
	assert.Equal(t, "00020126pix", payload.PixCode)
	assert.Equal(t, int64(19700), payload.TotalInCents)
}

func TestSendRemindersSkipsSettledSale(t *testing.T) {
	sales := &fakeSaleSource{byID: map[int64]*sale.Sale{
		9: {ID: 9, Status: sale.SaleStatusPaid},
	}}
	carts := &fakeCartSource{markWins: true, due: map[string][]cart.AbandonedCart{
		cart.StepPixReminder: {{
			ID: 3, SaleID: sql.NullInt64{Int64: 9, Valid: true},
			CustomerEmail: "maria@example.com",
		}},
	}}
	ob := &fakeOutbox{}
	svc := NewService(sales, carts, ob, &fakeVerifier{}, testConfig(), zap.NewNop())

	res, err := svc.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Empty(t, ob.rows, "a paid sale gets no payment reminder")
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []string{cart.StepPixReminder}, carts.marked,
		"the step is still marked so the cart is not re-read")
}

func TestSendRemindersStepDedupe(t *testing.T) {
	carts := &fakeCartSource{markWins: false, due: map[string][]cart.AbandonedCart{
		cart.StepAbandonedCart: {{ID: 3, CustomerEmail: "maria@example.com"}},
	}}
	ob := &fakeOutbox{}
	svc := NewService(&fakeSaleSource{}, carts, ob, &fakeVerifier{}, testConfig(), zap.NewNop())

	res, err := svc.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Empty(t, ob.rows, "losing the step flag race must not enqueue")
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 1, res.Checked)
}

func TestSendRemindersAbandonedCartStep(t *testing.T) {
	carts := &fakeCartSource{markWins: true, due: map[string][]cart.AbandonedCart{
		cart.StepAbandonedCart: {{
			ID: 8, SellerID: 1,
			CustomerName:  "Joao",
			CustomerEmail: "joao@example.com",
			ProductNames:  []string{"Ebook B"},
			TotalInCents:  4700,
		}},
	}}
	ob := &fakeOutbox{}
	svc := NewService(&fakeSaleSource{}, carts, ob, &fakeVerifier{}, testConfig(), zap.NewNop())

	_, err := svc.SendReminders(context.Background())
	require.NoError(t, err)

	require.Len(t, ob.rows, 1)
	assert.Equal(t, "cart:8:step:abandoned_cart", ob.rows[0].IdempotencyKey)

	var payload outbox.ReminderEmailPayload
	require.NoError(t, json.Unmarshal(ob.rows[0].Payload, &payload))
	assert.Empty(t, payload.PixCode, "abandoned-cart reminders carry no PIX code")
}
