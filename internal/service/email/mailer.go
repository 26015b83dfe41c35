// internal/service/email/mailer.go
package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/settings"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type SettingsStore interface {
	FindSellerSettings(ctx context.Context, sellerID int64) (*settings.SellerSettings, error)
}

// Mailer picks the right SMTP account per seller (falling back to the
// platform account) and renders transactional emails.
type Mailer struct {
	settings SettingsStore
	fallback SMTPConfig
	logger   *zap.Logger
}

func NewMailer(store SettingsStore, fallback SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{settings: store, fallback: fallback, logger: logger}
}

func (m *Mailer) senderFor(ctx context.Context, sellerID int64) (*Sender, error) {
	s, err := m.settings.FindSellerSettings(ctx, sellerID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}
	if s != nil {
		cfg := SMTPConfig{
			Host:     s.SMTPHost,
			Port:     s.SMTPPort,
			User:     s.SMTPUser,
			Pass:     s.SMTPPass,
			FromName: s.SMTPFromName,
			Secure:   s.SMTPSecure,
		}
		if cfg.Configured() {
			return NewSender(cfg), nil
		}
	}
	if !m.fallback.Configured() {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "no smtp account configured for seller")
	}
	return NewSender(m.fallback), nil
}

// SendDelivery sends the post-payment product delivery email. The product's
// own subject/body win when set; otherwise a generic confirmation goes out.
func (m *Mailer) SendDelivery(ctx context.Context, p *outbox.DeliveryEmailPayload) error {
	sender, err := m.senderFor(ctx, p.SellerID)
	if err != nil {
		return err
	}

	subject := p.Subject
	body := p.Body
	if subject == "" {
		subject = fmt.Sprintf("Your purchase: %s", p.ProductName)
	}
	if body == "" {
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your payment for <strong>%s</strong> was confirmed. Thank you for your purchase!</p>",
			html.EscapeString(firstName(p.CustomerName)),
			html.EscapeString(p.ProductName),
		)
	}

	if err := sender.Send(p.To, subject, body); err != nil {
		return fmt.Errorf("delivery email to %s: %w", p.To, err)
	}

	m.logger.Info("delivery email sent",
		zap.Int64("sale_id", p.SaleID),
		zap.Int64("product_id", p.ProductID),
	)
	return nil
}

// SendReminder sends a pix-reminder or abandoned-cart email.
func (m *Mailer) SendReminder(ctx context.Context, p *outbox.ReminderEmailPayload) error {
	sender, err := m.senderFor(ctx, p.SellerID)
	if err != nil {
		return err
	}

	name := html.EscapeString(firstName(p.CustomerName))
	products := html.EscapeString(strings.Join(p.ProductNames, ", "))
	total := fmt.Sprintf("R$ %d,%02d", p.TotalInCents/100, p.TotalInCents%100)

	var subject, body string
	switch p.Step {
	case "pix_reminder":
		subject = "Your PIX payment is waiting"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>Your PIX payment of <strong>%s</strong> for %s has not been confirmed yet. Copy the code below to finish it:</p><p class=\"pix-code\">%s</p>",
			name, total, products, html.EscapeString(p.PixCode),
		)
	default:
		subject = "You left something behind"
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>You were one step away from getting %s (<strong>%s</strong>). Come back and finish your order!</p>",
			name, products, total,
		)
	}

	if err := sender.Send(p.To, subject, body); err != nil {
		return fmt.Errorf("%s email to %s: %w", p.Step, p.To, err)
	}

	m.logger.Info("reminder email sent",
		zap.Int64("cart_id", p.CartID),
		zap.String("step", p.Step),
	)
	return nil
}

func firstName(full string) string {
	full = strings.TrimSpace(full)
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	if full == "" {
		return "there"
	}
	return full
}
