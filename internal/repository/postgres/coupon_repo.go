// internal/repository/postgres/coupon_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"checkout-service/internal/domain/coupon"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `
	id, seller_id, product_id, code, discount_type, value,
	active, max_uses, current_uses, expires_at, created_at, updated_at`

// Create inserts a coupon. Codes are stored uppercased; the unique index on
// (seller_id, code) surfaces duplicates as ErrDuplicateEntry.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	query := `
		INSERT INTO coupons (seller_id, product_id, code, discount_type, value, active, max_uses, expires_at)
		VALUES ($1, $2, UPPER($3), $4, $5, $6, $7, $8)
		RETURNING id, code, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.SellerID, c.ProductID, c.Code, c.DiscountType, c.Value, c.Active, c.MaxUses, c.ExpiresAt,
	).Scan(&c.ID, &c.Code, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

func (r *CouponRepository) scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(
		&c.ID, &c.SellerID, &c.ProductID, &c.Code, &c.DiscountType, &c.Value,
		&c.Active, &c.MaxUses, &c.CurrentUses, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan coupon: %w", err)
	}
	return &c, nil
}

// FindBySellerAndCode retrieves a coupon by its case-insensitive code.
func (r *CouponRepository) FindBySellerAndCode(ctx context.Context, sellerID int64, code string) (*coupon.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE seller_id = $1 AND code = UPPER($2)
	`
	return r.scanCoupon(r.db.QueryRow(ctx, query, sellerID, code))
}

// FindByID retrieves a coupon by ID.
func (r *CouponRepository) FindByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return r.scanCoupon(r.db.QueryRow(ctx, query, id))
}

// IncrementUses bumps the usage counter after a sale is created with the
// coupon applied. The guard keeps capped coupons within max_uses even under
// concurrent checkouts.
func (r *CouponRepository) IncrementUses(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE coupons
		SET current_uses = current_uses + 1, updated_at = NOW()
		WHERE id = $1 AND (max_uses IS NULL OR current_uses < max_uses)
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to increment coupon uses: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Update applies partial changes.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	query := `
		UPDATE coupons
		SET active = $1, value = $2, max_uses = $3, expires_at = $4, updated_at = NOW()
		WHERE id = $5 AND seller_id = $6
	`
	tag, err := r.db.Exec(ctx, query, c.Active, c.Value, c.MaxUses, c.ExpiresAt, c.ID, c.SellerID)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ListBySeller retrieves every coupon of a seller.
func (r *CouponRepository) ListBySeller(ctx context.Context, sellerID int64) ([]coupon.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE seller_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []coupon.Coupon
	for rows.Next() {
		c, err := r.scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}

	return coupons, rows.Err()
}

// Delete removes a coupon owned by the seller.
func (r *CouponRepository) Delete(ctx context.Context, sellerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id = $1 AND seller_id = $2`, id, sellerID)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
