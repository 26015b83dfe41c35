// internal/repository/postgres/sale_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-service/internal/domain/outbox"
	"checkout-service/internal/domain/sale"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SaleRepository struct {
	db     *pgxpool.Pool
	outbox *OutboxRepository
}

func NewSaleRepository(db *pgxpool.Pool, outbox *OutboxRepository) *SaleRepository {
	return &SaleRepository{db: db, outbox: outbox}
}

const saleColumns = `
	id, sale_reference, seller_id, transaction_id, upsell_transaction_id,
	items, customer_name, customer_email, customer_whatsapp, customer_ip,
	payment_method, status, pix_code, total_amount_in_cents, original_amount_in_cents,
	discount_in_cents, commission_in_cents, upsell_amount_in_cents,
	coupon_code, tracking, created_at, updated_at, paid_at, upsell_paid_at`

// Create inserts a pending sale and fills in id/timestamps.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	query := `
		INSERT INTO sales (
			sale_reference, seller_id, transaction_id, items,
			customer_name, customer_email, customer_whatsapp, customer_ip,
			payment_method, status, pix_code, total_amount_in_cents, original_amount_in_cents,
			discount_in_cents, commission_in_cents, coupon_code, tracking
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`

	itemsJSON, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	var trackingJSON []byte
	if s.Tracking != nil {
		trackingJSON, err = json.Marshal(s.Tracking)
		if err != nil {
			return fmt.Errorf("failed to marshal tracking: %w", err)
		}
	}

	err = r.db.QueryRow(
		ctx, query,
		s.SaleReference, s.SellerID, s.TransactionID, itemsJSON,
		s.CustomerName, s.CustomerEmail, s.CustomerWhatsapp, s.CustomerIP,
		s.PaymentMethod, s.Status, s.PixCode, s.TotalAmountInCents, s.OriginalAmountInCents,
		s.DiscountInCents, s.CommissionInCents, s.CouponCode, trackingJSON,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

func (r *SaleRepository) scanSale(row pgx.Row) (*sale.Sale, error) {
	var s sale.Sale
	var itemsJSON, trackingJSON []byte

	err := row.Scan(
		&s.ID, &s.SaleReference, &s.SellerID, &s.TransactionID, &s.UpsellTransactionID,
		&itemsJSON, &s.CustomerName, &s.CustomerEmail, &s.CustomerWhatsapp, &s.CustomerIP,
		&s.PaymentMethod, &s.Status, &s.PixCode, &s.TotalAmountInCents, &s.OriginalAmountInCents,
		&s.DiscountInCents, &s.CommissionInCents, &s.UpsellAmountInCents,
		&s.CouponCode, &trackingJSON, &s.CreatedAt, &s.UpdatedAt, &s.PaidAt, &s.UpsellPaidAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
	}
	if len(trackingJSON) > 0 {
		if err := json.Unmarshal(trackingJSON, &s.Tracking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracking: %w", err)
		}
	}

	return &s, nil
}

// FindByID retrieves a sale by ID.
func (r *SaleRepository) FindByID(ctx context.Context, id int64) (*sale.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.scanSale(r.db.QueryRow(ctx, query, id))
}

// FindByTransactionID retrieves a sale matching either the main or the upsell
// gateway transaction id, case-insensitively.
func (r *SaleRepository) FindByTransactionID(ctx context.Context, txID string) (*sale.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE LOWER(transaction_id) = LOWER($1)
		   OR LOWER(upsell_transaction_id) = LOWER($1)
	`
	return r.scanSale(r.db.QueryRow(ctx, query, txID))
}

// ConfirmPaid runs the CAS and the fan-out enqueue in one transaction: the
// sale flips to paid and its outbox rows commit atomically, or neither does.
// Returns true only for the invocation that wins the swap.
func (r *SaleRepository) ConfirmPaid(ctx context.Context, id int64, paidAt time.Time, fanOut []outbox.Row) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin confirm tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE sales
		SET status = 'paid', paid_at = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'waiting_payment'
	`, paidAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark sale paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for i := range fanOut {
		if err := r.outbox.EnqueueTx(ctx, tx, &fanOut[i]); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit confirm tx: %w", err)
	}
	return true, nil
}

// ConfirmUpsellPaid is ConfirmPaid for the second charge.
func (r *SaleRepository) ConfirmUpsellPaid(ctx context.Context, id int64, amountCents int64, paidAt time.Time, fanOut []outbox.Row) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin confirm tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE sales
		SET upsell_paid_at = $1, upsell_amount_in_cents = $2, updated_at = NOW()
		WHERE id = $3 AND upsell_paid_at IS NULL
	`, paidAt, amountCents, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark upsell paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for i := range fanOut {
		if err := r.outbox.EnqueueTx(ctx, tx, &fanOut[i]); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit confirm tx: %w", err)
	}
	return true, nil
}

// AdvanceTerminal moves a pending sale to cancelled/expired/failed. The
// WHERE clause keeps the forward-only invariant: a paid sale never reverts.
func (r *SaleRepository) AdvanceTerminal(ctx context.Context, id int64, status sale.SaleStatus) (bool, error) {
	if !sale.SaleStatusWaitingPayment.CanAdvanceTo(status) || status == sale.SaleStatusPaid {
		return false, xerrors.ErrInvalidInput
	}
	query := `
		UPDATE sales
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'waiting_payment'
	`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to advance sale status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetUpsellTransaction attaches the second charge's transaction id.
func (r *SaleRepository) SetUpsellTransaction(ctx context.Context, id int64, txID string) error {
	query := `
		UPDATE sales
		SET upsell_transaction_id = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.db.Exec(ctx, query, txID, id)
	if err != nil {
		return fmt.Errorf("failed to set upsell transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// List retrieves a seller's sales with filters and pagination.
func (r *SaleRepository) List(ctx context.Context, sellerID int64, f *sale.ListFilters) ([]sale.Sale, int64, error) {
	where := []string{"seller_id = $1"}
	args := []interface{}{sellerID}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where = append(where, fmt.Sprintf(
			"(LOWER(customer_email) LIKE $%d OR LOWER(customer_name) LIKE $%d OR LOWER(transaction_id) LIKE $%d)",
			len(args), len(args), len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM sales WHERE " + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(
		"SELECT %s FROM sales WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		saleColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		s, err := r.scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, *s)
	}

	return sales, total, rows.Err()
}

// FindPendingBetween returns waiting_payment sales created inside the sweeper
// window: old enough that the webhook should already have arrived, recent
// enough to still be worth re-checking.
func (r *SaleRepository) FindPendingBetween(ctx context.Context, newest, oldest time.Time) ([]sale.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE status = 'waiting_payment' AND created_at <= $1 AND created_at >= $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, newest, oldest)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending sales: %w", err)
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		s, err := r.scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}

	return sales, rows.Err()
}

// FindPaidBetween returns paid sales in a date range for reporting.
func (r *SaleRepository) FindPaidBetween(ctx context.Context, sellerID int64, from, to time.Time) ([]sale.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE seller_id = $1 AND status = 'paid' AND paid_at >= $2 AND paid_at < $3
		ORDER BY paid_at ASC
	`
	rows, err := r.db.Query(ctx, query, sellerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to find paid sales: %w", err)
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		s, err := r.scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}

	return sales, rows.Err()
}
