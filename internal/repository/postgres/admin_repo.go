// internal/repository/postgres/admin_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/internal/domain/admin"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `
	id, email, password_hash, full_name, role, active,
	last_login_at, created_at, updated_at, deleted_at, notes`

// Create inserts a panel account.
func (r *AdminRepository) Create(ctx context.Context, a *admin.Account) error {
	query := `
		INSERT INTO admins (email, password_hash, full_name, role, active)
		VALUES (LOWER($1), $2, $3, $4, $5)
		RETURNING id, email, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		a.Email, a.PasswordHash, a.FullName, a.Role, a.Active,
	).Scan(&a.ID, &a.Email, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

func (r *AdminRepository) scanAccount(row pgx.Row) (*admin.Account, error) {
	var a admin.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.Active,
		&a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt, &a.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}
	return &a, nil
}

// FindByEmail retrieves an active account by email.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*admin.Account, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = LOWER($1) AND deleted_at IS NULL`
	return r.scanAccount(r.db.QueryRow(ctx, query, email))
}

// FindByID retrieves an account by ID.
func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*admin.Account, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1 AND deleted_at IS NULL`
	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// TouchLastLogin records a successful login.
func (r *AdminRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE admins SET last_login_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}
	return nil
}

// ExistsSuperAdmin reports whether any super admin account exists.
func (r *AdminRepository) ExistsSuperAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE role = 'super_admin' AND deleted_at IS NULL)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check super admin: %w", err)
	}
	return exists, nil
}

// List retrieves accounts for the super-admin view.
func (r *AdminRepository) List(ctx context.Context) ([]admin.Account, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var accounts []admin.Account
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}

	return accounts, rows.Err()
}

// Deactivate soft-deletes an account.
func (r *AdminRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE admins SET active = FALSE, deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
