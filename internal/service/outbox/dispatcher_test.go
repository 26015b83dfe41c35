// internal/service/outbox/dispatcher_test.go
package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"checkout-service/internal/attribution"
	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/settings"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore hands rows to the dispatcher's execute callback one at a time,
// recording which ones the callback accepted.
type fakeStore struct {
	rows   []outbox.Row
	failed []int64
	sent   []int64
}

func (f *fakeStore) ProcessBatch(ctx context.Context, _, _ int, _ time.Duration, fn func(ctx context.Context, row *outbox.Row) error) (int, error) {
	for i := range f.rows {
		if err := fn(ctx, &f.rows[i]); err != nil {
			f.failed = append(f.failed, f.rows[i].ID)
			continue
		}
		f.sent = append(f.sent, f.rows[i].ID)
	}
	return len(f.rows), nil
}

type fakeAttribution struct{ events []*attribution.OrderEvent }

func (f *fakeAttribution) SendOrderEvent(_ context.Context, ev *attribution.OrderEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeMailer struct {
	deliveries []*outbox.DeliveryEmailPayload
	reminders  []*outbox.ReminderEmailPayload
}

func (f *fakeMailer) SendDelivery(_ context.Context, p *outbox.DeliveryEmailPayload) error {
	f.deliveries = append(f.deliveries, p)
	return nil
}

func (f *fakeMailer) SendReminder(_ context.Context, p *outbox.ReminderEmailPayload) error {
	f.reminders = append(f.reminders, p)
	return nil
}

type fakePublisher struct{ events []string }

func (f *fakePublisher) Publish(eventType, _ string, _ interface{}) {
	f.events = append(f.events, eventType)
}

type fakeSettings struct {
	settings map[int64]*settings.SellerSettings
}

func (f *fakeSettings) FindSellerSettings(_ context.Context, sellerID int64) (*settings.SellerSettings, error) {
	s, ok := f.settings[sellerID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

func mustRow(t *testing.T, id int64, kind outbox.Kind, payload interface{}) outbox.Row {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return outbox.Row{ID: id, Kind: kind, Payload: raw}
}

func newDispatcher(store *fakeStore, attr *fakeAttribution, mailer *fakeMailer, pub *fakePublisher, src SettingsSource) *Dispatcher {
	return NewDispatcher(store, attr, mailer, pub, src, time.Minute, zap.NewNop())
}

func TestDispatchOnce(t *testing.T) {
	store := &fakeStore{rows: []outbox.Row{
		mustRow(t, 1, outbox.KindAttribution, attribution.OrderEvent{SellerID: 1, OrderID: "SALE-1"}),
		mustRow(t, 2, outbox.KindDeliveryEmail, outbox.DeliveryEmailPayload{To: "maria@example.com", ProductName: "Course A"}),
		mustRow(t, 3, outbox.KindReminderEmail, outbox.ReminderEmailPayload{To: "joao@example.com", Step: "abandoned_cart"}),
		mustRow(t, 4, outbox.KindUpsellEvent, map[string]int64{"sale_id": 9}),
	}}
	attr := &fakeAttribution{}
	mailer := &fakeMailer{}
	pub := &fakePublisher{}
	d := newDispatcher(store, attr, mailer, pub, &fakeSettings{})

	n, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.Equal(t, []int64{1, 2, 3, 4}, store.sent)
	require.Len(t, attr.events, 1)
	assert.Equal(t, "SALE-1", attr.events[0].OrderID)
	require.Len(t, mailer.deliveries, 1)
	assert.Equal(t, "maria@example.com", mailer.deliveries[0].To)
	require.Len(t, mailer.reminders, 1)
	assert.Equal(t, []string{"UpsellPaid"}, pub.events)
}

func TestDispatchSkipsAttributionForOptedOutSeller(t *testing.T) {
	store := &fakeStore{rows: []outbox.Row{
		mustRow(t, 1, outbox.KindAttribution, attribution.OrderEvent{SellerID: 7, OrderID: "SALE-7"}),
	}}
	attr := &fakeAttribution{}
	src := &fakeSettings{settings: map[int64]*settings.SellerSettings{
		7: {SellerID: 7, AttributionEnabled: false},
	}}
	d := newDispatcher(store, attr, &fakeMailer{}, &fakePublisher{}, src)

	_, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, attr.events)
	assert.Equal(t, []int64{1}, store.sent, "an opted-out row is consumed, not retried")
}

func TestDispatchDefaultsAttributionOnForUnknownSeller(t *testing.T) {
	store := &fakeStore{rows: []outbox.Row{
		mustRow(t, 1, outbox.KindAttribution, attribution.OrderEvent{SellerID: 3, OrderID: "SALE-3"}),
	}}
	attr := &fakeAttribution{}
	d := newDispatcher(store, attr, &fakeMailer{}, &fakePublisher{}, &fakeSettings{})

	_, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, attr.events, 1, "a seller with no saved settings still gets attribution")
}

func TestDispatchRejectsMalformedPayload(t *testing.T) {
	store := &fakeStore{rows: []outbox.Row{
		{ID: 1, Kind: outbox.KindDeliveryEmail, Payload: json.RawMessage(`{not json`)},
		{ID: 2, Kind: outbox.Kind("mystery"), Payload: json.RawMessage(`{}`)},
	}}
	d := newDispatcher(store, &fakeAttribution{}, &fakeMailer{}, &fakePublisher{}, &fakeSettings{})

	_, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, store.failed)
	assert.Empty(t, store.sent)
}
