// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"checkout-service/internal/domain/customer"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	id, seller_id, name, email, whatsapp, funnel_stage,
	total_orders, total_spent_in_cents, first_purchase_at, last_purchase_at,
	purchased_product_ids, sale_ids, created_at, updated_at`

// UpsertPurchase records a confirmed purchase for (seller, email) in one
// statement. The unique index on (seller_id, LOWER(email)) makes concurrent
// upserts for the same buyer serialize instead of duplicating rows.
func (r *CustomerRepository) UpsertPurchase(ctx context.Context, in *customer.PurchaseInput) (*customer.Customer, error) {
	query := `
		INSERT INTO customers (
			seller_id, name, email, whatsapp, funnel_stage,
			total_orders, total_spent_in_cents, first_purchase_at, last_purchase_at,
			purchased_product_ids, sale_ids
		) VALUES ($1, $2, LOWER($3), NULLIF($4, ''), 'customer', 1, $5, $6, $6, $7, ARRAY[$8]::bigint[])
		ON CONFLICT (seller_id, email) DO UPDATE SET
			name = EXCLUDED.name,
			whatsapp = COALESCE(EXCLUDED.whatsapp, customers.whatsapp),
			funnel_stage = 'customer',
			total_orders = customers.total_orders + 1,
			total_spent_in_cents = customers.total_spent_in_cents + EXCLUDED.total_spent_in_cents,
			first_purchase_at = LEAST(customers.first_purchase_at, EXCLUDED.first_purchase_at),
			last_purchase_at = GREATEST(customers.last_purchase_at, EXCLUDED.last_purchase_at),
			purchased_product_ids = (
				SELECT ARRAY(SELECT DISTINCT unnest(customers.purchased_product_ids || EXCLUDED.purchased_product_ids) ORDER BY 1)
			),
			sale_ids = customers.sale_ids || EXCLUDED.sale_ids,
			updated_at = NOW()
		RETURNING ` + customerColumns

	row := r.db.QueryRow(
		ctx, query,
		in.SellerID, in.Name, in.Email, in.Whatsapp,
		in.SpentCents, in.PaidAt, in.ProductIDs, in.SaleID,
	)

	return r.scanCustomer(row)
}

func (r *CustomerRepository) scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.SellerID, &c.Name, &c.Email, &c.Whatsapp, &c.FunnelStage,
		&c.TotalOrders, &c.TotalSpentInCents, &c.FirstPurchaseAt, &c.LastPurchaseAt,
		&c.PurchasedProductIDs, &c.SaleIDs, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

// FindBySellerAndEmail retrieves a customer by the upsert key.
func (r *CustomerRepository) FindBySellerAndEmail(ctx context.Context, sellerID int64, email string) (*customer.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE seller_id = $1 AND email = LOWER($2)
	`
	return r.scanCustomer(r.db.QueryRow(ctx, query, sellerID, email))
}

// CreateLead inserts a lead-stage row for an abandoned checkout; an existing
// buyer is left untouched.
func (r *CustomerRepository) CreateLead(ctx context.Context, sellerID int64, name, email, whatsapp string) error {
	query := `
		INSERT INTO customers (seller_id, name, email, whatsapp, funnel_stage)
		VALUES ($1, $2, LOWER($3), NULLIF($4, ''), 'lead')
		ON CONFLICT (seller_id, email) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, sellerID, name, email, whatsapp); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// List retrieves a seller's customers with filters and pagination.
func (r *CustomerRepository) List(ctx context.Context, sellerID int64, f *customer.ListFilters) ([]customer.Customer, int64, error) {
	where := []string{"seller_id = $1"}
	args := []interface{}{sellerID}

	if f.FunnelStage != "" {
		args = append(args, f.FunnelStage)
		where = append(where, fmt.Sprintf("funnel_stage = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR email LIKE $%d)", len(args), len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(
		"SELECT %s FROM customers WHERE %s ORDER BY last_purchase_at DESC NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d",
		customerColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}

	return customers, total, rows.Err()
}

// Stats aggregates seller-level customer numbers.
func (r *CustomerRepository) Stats(ctx context.Context, sellerID int64) (*customer.Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE funnel_stage = 'customer'),
			COUNT(*) FILTER (WHERE funnel_stage IN ('lead', 'prospect')),
			COALESCE(SUM(total_spent_in_cents), 0),
			COALESCE(AVG(total_orders) FILTER (WHERE funnel_stage = 'customer'), 0)
		FROM customers
		WHERE seller_id = $1
	`
	var st customer.Stats
	err := r.db.QueryRow(ctx, query, sellerID).Scan(
		&st.TotalCustomers, &st.TotalLeads, &st.TotalSpentInCents, &st.AvgOrdersPerBuyer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate customer stats: %w", err)
	}
	return &st, nil
}
