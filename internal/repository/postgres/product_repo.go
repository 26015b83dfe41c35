// internal/repository/postgres/product_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"checkout-service/internal/domain/product"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `
	id, seller_id, name, description, price_in_cents, active,
	checkout_config, offers, delivery_email_subject, delivery_email_body,
	default_utms, created_at, updated_at`

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (
			seller_id, name, description, price_in_cents, active,
			checkout_config, offers, delivery_email_subject, delivery_email_body, default_utms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	configJSON, offersJSON, utmsJSON, err := marshalProductBlobs(p)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(
		ctx, query,
		p.SellerID, p.Name, p.Description, p.PriceInCents, p.Active,
		configJSON, offersJSON, p.DeliveryEmailSubject, p.DeliveryEmailBody, utmsJSON,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites a product's mutable fields.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price_in_cents = $3, active = $4,
		    checkout_config = $5, offers = $6, delivery_email_subject = $7,
		    delivery_email_body = $8, default_utms = $9, updated_at = NOW()
		WHERE id = $10 AND seller_id = $11
	`

	configJSON, offersJSON, utmsJSON, err := marshalProductBlobs(p)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(
		ctx, query,
		p.Name, p.Description, p.PriceInCents, p.Active,
		configJSON, offersJSON, p.DeliveryEmailSubject, p.DeliveryEmailBody, utmsJSON,
		p.ID, p.SellerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func marshalProductBlobs(p *product.Product) (configJSON, offersJSON, utmsJSON []byte, err error) {
	if p.CheckoutConfig != nil {
		if configJSON, err = json.Marshal(p.CheckoutConfig); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal checkout_config: %w", err)
		}
	}
	if offersJSON, err = json.Marshal(p.Offers); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal offers: %w", err)
	}
	if p.DefaultUTMs != nil {
		if utmsJSON, err = json.Marshal(p.DefaultUTMs); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal default_utms: %w", err)
		}
	}
	return configJSON, offersJSON, utmsJSON, nil
}

func (r *ProductRepository) scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	var configJSON, offersJSON, utmsJSON []byte

	err := row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.PriceInCents, &p.Active,
		&configJSON, &offersJSON, &p.DeliveryEmailSubject, &p.DeliveryEmailBody,
		&utmsJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &p.CheckoutConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkout_config: %w", err)
		}
	}
	if len(offersJSON) > 0 {
		if err := json.Unmarshal(offersJSON, &p.Offers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal offers: %w", err)
		}
	}
	if len(utmsJSON) > 0 {
		if err := json.Unmarshal(utmsJSON, &p.DefaultUTMs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal default_utms: %w", err)
		}
	}

	return &p, nil
}

// FindByID retrieves a product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(r.db.QueryRow(ctx, query, id))
}

// FindByIDs retrieves several products at once, keyed by id.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*product.Product, len(ids))
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}

	return out, rows.Err()
}

// List retrieves a seller's products.
func (r *ProductRepository) List(ctx context.Context, sellerID int64, f *product.ListFilters) ([]product.Product, int64, error) {
	where := []string{"seller_id = $1"}
	args := []interface{}{sellerID}

	if f.Active != nil {
		args = append(args, *f.Active)
		where = append(where, fmt.Sprintf("active = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where = append(where, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}

	return products, total, rows.Err()
}

// Delete removes a product owned by the seller.
func (r *ProductRepository) Delete(ctx context.Context, sellerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND seller_id = $2`, id, sellerID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
