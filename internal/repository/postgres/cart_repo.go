// internal/repository/postgres/cart_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checkout-service/internal/domain/cart"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AbandonedCartRepository struct {
	db *pgxpool.Pool
}

func NewAbandonedCartRepository(db *pgxpool.Pool) *AbandonedCartRepository {
	return &AbandonedCartRepository{db: db}
}

const cartColumns = `
	id, seller_id, sale_id, customer_name, customer_email, customer_whatsapp,
	product_names, total_in_cents, steps_sent, recovered, created_at, updated_at`

// Create inserts an abandoned-cart snapshot at checkout initiation.
func (r *AbandonedCartRepository) Create(ctx context.Context, c *cart.AbandonedCart) error {
	query := `
		INSERT INTO abandoned_carts (
			seller_id, sale_id, customer_name, customer_email, customer_whatsapp,
			product_names, total_in_cents, steps_sent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, '{}'::jsonb)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.SellerID, c.SaleID, c.CustomerName, c.CustomerEmail, c.CustomerWhatsapp,
		c.ProductNames, c.TotalInCents,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create abandoned cart: %w", err)
	}

	return nil
}

func (r *AbandonedCartRepository) scanCart(row pgx.Row) (*cart.AbandonedCart, error) {
	var c cart.AbandonedCart
	var stepsJSON []byte

	err := row.Scan(
		&c.ID, &c.SellerID, &c.SaleID, &c.CustomerName, &c.CustomerEmail, &c.CustomerWhatsapp,
		&c.ProductNames, &c.TotalInCents, &stepsJSON, &c.Recovered, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan abandoned cart: %w", err)
	}

	c.StepsSent = map[string]bool{}
	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &c.StepsSent); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps_sent: %w", err)
		}
	}

	return &c, nil
}

// FindDueForStep returns unrecovered carts created before cutoff whose step
// flag is still unset.
func (r *AbandonedCartRepository) FindDueForStep(ctx context.Context, step string, cutoff time.Time) ([]cart.AbandonedCart, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM abandoned_carts
		WHERE recovered = FALSE
		  AND created_at <= $1
		  AND COALESCE((steps_sent ->> $2)::boolean, FALSE) = FALSE
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, cutoff, step)
	if err != nil {
		return nil, fmt.Errorf("failed to find due carts: %w", err)
	}
	defer rows.Close()

	var carts []cart.AbandonedCart
	for rows.Next() {
		c, err := r.scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, *c)
	}

	return carts, rows.Err()
}

// MarkStepSent sets the step flag. The guard makes the sweeper race-safe:
// only one run flips the flag and therefore only one enqueues the email.
func (r *AbandonedCartRepository) MarkStepSent(ctx context.Context, id int64, step string) (bool, error) {
	query := `
		UPDATE abandoned_carts
		SET steps_sent = steps_sent || jsonb_build_object($1::text, TRUE), updated_at = NOW()
		WHERE id = $2 AND COALESCE((steps_sent ->> $1)::boolean, FALSE) = FALSE
	`
	tag, err := r.db.Exec(ctx, query, step, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark cart step sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkRecovered flags the cart once its sale is paid; no further reminders.
func (r *AbandonedCartRepository) MarkRecovered(ctx context.Context, saleID int64) error {
	query := `
		UPDATE abandoned_carts
		SET recovered = TRUE, updated_at = NOW()
		WHERE sale_id = $1 AND recovered = FALSE
	`
	if _, err := r.db.Exec(ctx, query, saleID); err != nil {
		return fmt.Errorf("failed to mark cart recovered: %w", err)
	}
	return nil
}
