// internal/service/outbox/dispatcher.go
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/internal/attribution"
	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/settings"
	"checkout-service/internal/events"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type Store interface {
	ProcessBatch(ctx context.Context, limit, maxAttempts int, baseBackoff time.Duration, fn func(ctx context.Context, row *outbox.Row) error) (int, error)
}

type Mailer interface {
	SendDelivery(ctx context.Context, p *outbox.DeliveryEmailPayload) error
	SendReminder(ctx context.Context, p *outbox.ReminderEmailPayload) error
}

type SettingsSource interface {
	FindSellerSettings(ctx context.Context, sellerID int64) (*settings.SellerSettings, error)
}

const (
	batchSize   = 50
	maxAttempts = 8
	baseBackoff = 30 * time.Second
)

// Dispatcher drains the outbox on a fixed period and executes each queued
// side effect. Delivery is at-least-once; receivers must tolerate replays.
type Dispatcher struct {
	store       Store
	attribution attribution.Sender
	mailer      Mailer
	publisher   events.Publisher
	settings    SettingsSource
	period      time.Duration
	logger      *zap.Logger
}

func NewDispatcher(
	store Store,
	attr attribution.Sender,
	mailer Mailer,
	publisher events.Publisher,
	settingsSource SettingsSource,
	period time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:       store,
		attribution: attr,
		mailer:      mailer,
		publisher:   publisher,
		settings:    settingsSource,
		period:      period,
		logger:      logger,
	}
}

// Start runs the dispatch loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	d.logger.Info("outbox dispatcher started", zap.Duration("period", d.period))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if n, err := d.DispatchOnce(ctx); err != nil {
				d.logger.Error("outbox dispatch run failed", zap.Error(err))
			} else if n > 0 {
				d.logger.Info("outbox rows dispatched", zap.Int("count", n))
			}
		}
	}
}

// DispatchOnce drains one batch. Exposed for the manual sweep endpoint.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	return d.store.ProcessBatch(ctx, batchSize, maxAttempts, baseBackoff, d.execute)
}

func (d *Dispatcher) execute(ctx context.Context, row *outbox.Row) error {
	switch row.Kind {
	case outbox.KindAttribution:
		var ev attribution.OrderEvent
		if err := json.Unmarshal(row.Payload, &ev); err != nil {
			return fmt.Errorf("bad attribution payload: %w", err)
		}
		if !d.attributionEnabled(ctx, ev.SellerID) {
			// Seller opted out; mark the row sent and move on.
			return nil
		}
		return d.attribution.SendOrderEvent(ctx, &ev)

	case outbox.KindDeliveryEmail:
		var p outbox.DeliveryEmailPayload
		if err := json.Unmarshal(row.Payload, &p); err != nil {
			return fmt.Errorf("bad delivery email payload: %w", err)
		}
		return d.mailer.SendDelivery(ctx, &p)

	case outbox.KindReminderEmail:
		var p outbox.ReminderEmailPayload
		if err := json.Unmarshal(row.Payload, &p); err != nil {
			return fmt.Errorf("bad reminder email payload: %w", err)
		}
		return d.mailer.SendReminder(ctx, &p)

	case outbox.KindUpsellEvent:
		var p events.UpsellPaidPayload
		if err := json.Unmarshal(row.Payload, &p); err != nil {
			return fmt.Errorf("bad upsell payload: %w", err)
		}
		d.publisher.Publish(events.EventUpsellPaid, row.IdempotencyKey, p)
		return nil

	default:
		return fmt.Errorf("unknown outbox kind %q", row.Kind)
	}
}

// attributionEnabled defaults to true: only an explicit opt-out in the
// seller's saved settings suppresses the event.
func (d *Dispatcher) attributionEnabled(ctx context.Context, sellerID int64) bool {
	if d.settings == nil || sellerID == 0 {
		return true
	}
	s, err := d.settings.FindSellerSettings(ctx, sellerID)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			d.logger.Warn("failed to load seller settings for attribution",
				zap.Int64("seller_id", sellerID), zap.Error(err))
		}
		return true
	}
	return s.AttributionEnabled
}
