// internal/domain/admin/entity.go
package admin

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleSeller     Role = "seller"
	RoleSuperAdmin Role = "super_admin"
)

// Account is a panel user: a seller managing their own products and sales,
// or a super admin with platform-wide access.
type Account struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	FullName     string         `json:"full_name" db:"full_name"`
	Role         Role           `json:"role" db:"role"`
	Active       bool           `json:"active" db:"active"`
	LastLoginAt  sql.NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt    sql.NullTime   `json:"-" db:"deleted_at"`
	Notes        sql.NullString `json:"notes,omitempty" db:"notes"`
}
