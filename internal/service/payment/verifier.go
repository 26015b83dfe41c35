// internal/service/payment/verifier.go
package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"checkout-service/internal/attribution"
	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/product"
	"checkout-service/internal/domain/sale"
	"checkout-service/internal/events"
	"checkout-service/internal/gateway"
	xerrors "checkout-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type SaleStore interface {
	FindByTransactionID(ctx context.Context, txID string) (*sale.Sale, error)
	ConfirmPaid(ctx context.Context, id int64, paidAt time.Time, fanOut []outbox.Row) (bool, error)
	ConfirmUpsellPaid(ctx context.Context, id int64, amountCents int64, paidAt time.Time, fanOut []outbox.Row) (bool, error)
	AdvanceTerminal(ctx context.Context, id int64, status sale.SaleStatus) (bool, error)
}

type ProductStore interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*product.Product, error)
}

type CustomerUpserter interface {
	RecordPurchase(ctx context.Context, in *PurchaseRecord) error
}

// PurchaseRecord is the verifier's view of a confirmed purchase.
type PurchaseRecord struct {
	SellerID   int64
	Name       string
	Email      string
	Whatsapp   string
	SaleID     int64
	ProductIDs []int64
	SpentCents int64
	PaidAt     time.Time
}

type CartStore interface {
	MarkRecovered(ctx context.Context, saleID int64) error
}

// Locker guards one verification per transaction id at a time.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// PaidListener is told after a sale is confirmed, for live dashboard pushes
// and report-cache invalidation.
type PaidListener interface {
	SalePaid(s *sale.Sale)
}

// Verifier reconciles sales against the gateway's authoritative state. The
// webhook body is only a trigger; every status decision comes from a fresh
// gateway query.
type Verifier struct {
	sales     SaleStore
	products  ProductStore
	customers CustomerUpserter
	carts     CartStore
	provider  gateway.Provider
	locker    Locker
	publisher events.Publisher
	listener  PaidListener
	logger    *zap.Logger
}

func NewVerifier(
	sales SaleStore,
	products ProductStore,
	customers CustomerUpserter,
	carts CartStore,
	provider gateway.Provider,
	locker Locker,
	publisher events.Publisher,
	listener PaidListener,
	logger *zap.Logger,
) *Verifier {
	return &Verifier{
		sales:     sales,
		products:  products,
		customers: customers,
		carts:     carts,
		provider:  provider,
		locker:    locker,
		publisher: publisher,
		listener:  listener,
		logger:    logger,
	}
}

// ParseCallback extracts the transaction id from the gateway's form-encoded
// webhook body. The gateway has sent both field names over time.
func ParseCallback(form url.Values) (string, bool) {
	if id := strings.TrimSpace(form.Get("id")); id != "" {
		return id, true
	}
	if id := strings.TrimSpace(form.Get("transaction_id")); id != "" {
		return id, true
	}
	return "", false
}

const lockTTL = 30 * time.Second

// Verify re-checks one transaction against the gateway and advances the sale
// if the gateway reports a terminal state. Safe to call repeatedly: the
// status CAS makes re-verification of a settled sale a no-op.
func (v *Verifier) Verify(ctx context.Context, txID string) error {
	lockKey := "verify:" + strings.ToLower(txID)
	acquired, err := v.locker.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		v.logger.Warn("verification lock failed, proceeding without it",
			zap.String("transaction_id", txID), zap.Error(err))
	} else if !acquired {
		v.logger.Info("verification already in progress", zap.String("transaction_id", txID))
		return nil
	} else {
		defer func() {
			if err := v.locker.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
				v.logger.Warn("failed to release verification lock", zap.Error(err))
			}
		}()
	}

	s, err := v.sales.FindByTransactionID(ctx, txID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			// Not a sale of ours; gateways sometimes notify about other
			// merchants' transactions after a misrouted config.
			v.logger.Warn("webhook for unknown transaction", zap.String("transaction_id", txID))
			return nil
		}
		return fmt.Errorf("sale lookup for transaction %s: %w", txID, err)
	}

	tx, err := v.provider.GetTransaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("gateway status query for transaction %s: %w", txID, err)
	}

	isUpsell := s.UpsellTransactionID.Valid && strings.EqualFold(s.UpsellTransactionID.String, txID)

	if tx.Paid() {
		if isUpsell {
			return v.confirmUpsell(ctx, s, tx)
		}
		return v.confirmMain(ctx, s, tx)
	}

	if status, terminal := terminalStatus(tx.Status); terminal && !isUpsell {
		advanced, err := v.sales.AdvanceTerminal(ctx, s.ID, status)
		if err != nil {
			return err
		}
		if advanced {
			v.logger.Info("sale advanced to terminal status",
				zap.Int64("sale_id", s.ID), zap.String("status", string(status)))
			if status == sale.SaleStatusExpired {
				v.publisher.Publish(events.EventSaleExpired, s.SaleReference, events.SalePaidPayload{
					SaleID: s.ID, SellerID: s.SellerID, TransactionID: s.TransactionID,
				})
			}
		}
	}

	return nil
}

func (v *Verifier) confirmMain(ctx context.Context, s *sale.Sale, tx *gateway.Transaction) error {
	paidAt := parsePaidAt(tx.PaidAt)

	fanOut, productIDs, err := v.buildFanOut(ctx, s)
	if err != nil {
		return err
	}

	won, err := v.sales.ConfirmPaid(ctx, s.ID, paidAt, fanOut)
	if err != nil {
		return err
	}
	if !won {
		// Already paid; a concurrent delivery got here first.
		return nil
	}

	s.Status = sale.SaleStatusPaid

	// Post-confirmation effects. The customer upsert is idempotent per sale
	// because only the CAS winner reaches this point.
	if err := v.customers.RecordPurchase(ctx, &PurchaseRecord{
		SellerID:   s.SellerID,
		Name:       s.CustomerName,
		Email:      s.CustomerEmail,
		Whatsapp:   s.CustomerWhatsapp.String,
		SaleID:     s.ID,
		ProductIDs: productIDs,
		SpentCents: s.TotalAmountInCents,
		PaidAt:     paidAt,
	}); err != nil {
		v.logger.Warn("customer upsert failed after payment",
			zap.Int64("sale_id", s.ID), zap.Error(err))
	}

	if err := v.carts.MarkRecovered(ctx, s.ID); err != nil {
		v.logger.Warn("failed to mark cart recovered", zap.Int64("sale_id", s.ID), zap.Error(err))
	}

	v.publisher.Publish(events.EventSalePaid, s.SaleReference, events.SalePaidPayload{
		SaleID:             s.ID,
		SellerID:           s.SellerID,
		TransactionID:      s.TransactionID,
		TotalAmountInCents: s.TotalAmountInCents,
		CommissionInCents:  s.CommissionInCents,
		ProductIDs:         productIDs,
		CustomerEmail:      s.CustomerEmail,
	})

	if v.listener != nil {
		v.listener.SalePaid(s)
	}

	v.logger.Info("sale confirmed paid",
		zap.Int64("sale_id", s.ID),
		zap.String("transaction_id", s.TransactionID),
		zap.Int64("total_amount_in_cents", s.TotalAmountInCents),
	)

	return nil
}

func (v *Verifier) confirmUpsell(ctx context.Context, s *sale.Sale, tx *gateway.Transaction) error {
	paidAt := parsePaidAt(tx.PaidAt)

	payload, _ := json.Marshal(events.UpsellPaidPayload{
		SaleID:              s.ID,
		SellerID:            s.SellerID,
		UpsellTransactionID: s.UpsellTransactionID.String,
		AmountInCents:       tx.AmountInCents,
	})
	fanOut := []outbox.Row{{
		Kind:           outbox.KindUpsellEvent,
		SaleID:         nullInt64(s.ID),
		IdempotencyKey: fmt.Sprintf("sale:%d:upsell", s.ID),
		Payload:        payload,
	}}

	won, err := v.sales.ConfirmUpsellPaid(ctx, s.ID, tx.AmountInCents, paidAt, fanOut)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	v.publisher.Publish(events.EventUpsellPaid, s.SaleReference, events.UpsellPaidPayload{
		SaleID:              s.ID,
		SellerID:            s.SellerID,
		UpsellTransactionID: s.UpsellTransactionID.String,
		AmountInCents:       tx.AmountInCents,
	})

	v.logger.Info("upsell confirmed paid",
		zap.Int64("sale_id", s.ID),
		zap.Int64("amount_in_cents", tx.AmountInCents),
	)

	return nil
}

// buildFanOut assembles the outbox rows committed alongside the paid CAS:
// one attribution event plus one delivery email per purchased product.
func (v *Verifier) buildFanOut(ctx context.Context, s *sale.Sale) ([]outbox.Row, []int64, error) {
	productIDs := make([]int64, 0, len(s.Items))
	productNames := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		productIDs = append(productIDs, it.ProductID)
		productNames = append(productNames, it.Name)
	}

	products, err := v.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products for fan-out: %w", err)
	}

	var rows []outbox.Row

	attrPayload, err := json.Marshal(attribution.OrderEvent{
		SellerID:          s.SellerID,
		OrderID:           s.SaleReference,
		CustomerName:      s.CustomerName,
		CustomerEmail:     s.CustomerEmail,
		CustomerWhatsapp:  s.CustomerWhatsapp.String,
		ProductIDs:        productIDs,
		ProductNames:      productNames,
		TotalInCents:      s.TotalAmountInCents,
		CommissionInCents: s.CommissionInCents,
		Tracking:          s.Tracking,
		PaidAt:            time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal attribution payload: %w", err)
	}
	rows = append(rows, outbox.Row{
		Kind:           outbox.KindAttribution,
		SaleID:         nullInt64(s.ID),
		IdempotencyKey: fmt.Sprintf("sale:%d:attribution", s.ID),
		Payload:        attrPayload,
	})

	for _, it := range s.Items {
		emailPayload := outbox.DeliveryEmailPayload{
			SellerID:     s.SellerID,
			SaleID:       s.ID,
			ProductID:    it.ProductID,
			ProductName:  it.Name,
			CustomerName: s.CustomerName,
			To:           s.CustomerEmail,
		}
		if p, ok := products[it.ProductID]; ok {
			emailPayload.Subject = p.DeliveryEmailSubject.String
			emailPayload.Body = p.DeliveryEmailBody.String
		}
		raw, err := json.Marshal(emailPayload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal delivery email payload: %w", err)
		}
		rows = append(rows, outbox.Row{
			Kind:           outbox.KindDeliveryEmail,
			SaleID:         nullInt64(s.ID),
			IdempotencyKey: fmt.Sprintf("sale:%d:product:%d:delivery", s.ID, it.ProductID),
			Payload:        raw,
		})
	}

	return rows, productIDs, nil
}

// terminalStatus maps gateway vocabulary onto the sale's terminal states.
func terminalStatus(gatewayStatus string) (sale.SaleStatus, bool) {
	switch strings.ToLower(gatewayStatus) {
	case "cancelled", "canceled":
		return sale.SaleStatusCancelled, true
	case "expired":
		return sale.SaleStatusExpired, true
	case "refused", "failed", "error":
		return sale.SaleStatusFailed, true
	}
	return "", false
}

func parsePaidAt(raw string) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
