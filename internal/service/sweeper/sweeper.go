// internal/service/sweeper/sweeper.go
package sweeper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/internal/domain/cart"
	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/sale"

	"go.uber.org/zap"
)

type SaleSource interface {
	FindPendingBetween(ctx context.Context, newest, oldest time.Time) ([]sale.Sale, error)
	FindByID(ctx context.Context, id int64) (*sale.Sale, error)
}

type Verifier interface {
	Verify(ctx context.Context, txID string) error
}

type CartSource interface {
	FindDueForStep(ctx context.Context, step string, cutoff time.Time) ([]cart.AbandonedCart, error)
	MarkStepSent(ctx context.Context, id int64, step string) (bool, error)
}

type OutboxStore interface {
	Enqueue(ctx context.Context, row *outbox.Row) error
}

// Config sets the sweep windows. PendingMinAge keeps the re-verifier away
// from sales whose webhook is probably still in flight; PendingLookback
// bounds how far back it reaches.
type Config struct {
	PendingLookback    time.Duration
	PendingMinAge      time.Duration
	PixReminderDelay   time.Duration
	AbandonedCartDelay time.Duration
}

// Service runs the scheduled jobs: re-verifying stale pending sales against
// the gateway and queueing delayed reminder emails.
type Service struct {
	sales    SaleSource
	carts    CartSource
	outbox   OutboxStore
	verifier Verifier
	cfg      Config
	logger   *zap.Logger
}

func NewService(sales SaleSource, carts CartSource, ob OutboxStore, verifier Verifier, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		sales:    sales,
		carts:    carts,
		outbox:   ob,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// SweepResult summarizes one run for the cron endpoint's response.
type SweepResult struct {
	Checked  int `json:"checked"`
	Failed   int `json:"failed"`
	Enqueued int `json:"enqueued"`
}

// ReverifyPending re-checks waiting_payment sales inside the sweep window
// against the gateway. Catches webhooks that never arrived.
func (s *Service) ReverifyPending(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	newest := now.Add(-s.cfg.PendingMinAge)
	oldest := now.Add(-s.cfg.PendingLookback)

	pending, err := s.sales.FindPendingBetween(ctx, newest, oldest)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending sales: %w", err)
	}

	res := &SweepResult{}
	for i := range pending {
		res.Checked++
		if err := s.verifier.Verify(ctx, pending[i].TransactionID); err != nil {
			res.Failed++
			s.logger.Warn("pending sale re-verification failed",
				zap.Int64("sale_id", pending[i].ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("pending sweep finished",
		zap.Int("checked", res.Checked),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// SendReminders queues due reminder emails for both steps. Each cart gets
// each step at most once: MarkStepSent flips the flag atomically and only
// the winner enqueues.
func (s *Service) SendReminders(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	res := &SweepResult{}

	steps := []struct {
		key   string
		delay time.Duration
	}{
		{cart.StepPixReminder, s.cfg.PixReminderDelay},
		{cart.StepAbandonedCart, s.cfg.AbandonedCartDelay},
	}

	for _, step := range steps {
		due, err := s.carts.FindDueForStep(ctx, step.key, now.Add(-step.delay))
		if err != nil {
			return nil, fmt.Errorf("failed to load carts due for %s: %w", step.key, err)
		}

		for i := range due {
			res.Checked++
			if err := s.processCartStep(ctx, &due[i], step.key); err != nil {
				res.Failed++
				s.logger.Warn("reminder enqueue failed",
					zap.Int64("cart_id", due[i].ID),
					zap.String("step", step.key),
					zap.Error(err),
				)
				continue
			}
			res.Enqueued++
		}
	}

	s.logger.Info("reminder sweep finished",
		zap.Int("checked", res.Checked),
		zap.Int("enqueued", res.Enqueued),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Service) processCartStep(ctx context.Context, c *cart.AbandonedCart, step string) error {
	payload := outbox.ReminderEmailPayload{
		SellerID:     c.SellerID,
		CartID:       c.ID,
		Step:         step,
		CustomerName: c.CustomerName,
		To:           c.CustomerEmail,
		ProductNames: c.ProductNames,
		TotalInCents: c.TotalInCents,
	}

	if step == cart.StepPixReminder {
		if !c.SaleID.Valid {
			// No charge was ever created; nothing to remind about.
			return s.skipStep(ctx, c.ID, step)
		}
		sl, err := s.sales.FindByID(ctx, c.SaleID.Int64)
		if err != nil {
			return err
		}
		if sl.Status != sale.SaleStatusWaitingPayment {
			return s.skipStep(ctx, c.ID, step)
		}
		payload.PixCode = sl.PixCode.String
	}

	won, err := s.carts.MarkStepSent(ctx, c.ID, step)
	if err != nil {
		return err
	}
	if !won {
		// Another sweep run got here first.
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	return s.outbox.Enqueue(ctx, &outbox.Row{
		Kind:           outbox.KindReminderEmail,
		SaleID:         c.SaleID,
		IdempotencyKey: fmt.Sprintf("cart:%d:step:%s", c.ID, step),
		Payload:        raw,
	})
}

// skipStep marks a step handled without sending, so the sweeper stops
// re-reading the cart.
func (s *Service) skipStep(ctx context.Context, cartID int64, step string) error {
	_, err := s.carts.MarkStepSent(ctx, cartID, step)
	return err
}
