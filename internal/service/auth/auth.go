// internal/service/auth/auth.go
package auth

import (
	"context"
	"os"
	"strings"
	"time"

	"checkout-service/internal/domain/admin"
	xerrors "checkout-service/internal/pkg/errors"
	"checkout-service/internal/pkg/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AccountStore interface {
	Create(ctx context.Context, a *admin.Account) error
	FindByEmail(ctx context.Context, email string) (*admin.Account, error)
	FindByID(ctx context.Context, id int64) (*admin.Account, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	ExistsSuperAdmin(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]admin.Account, error)
	Deactivate(ctx context.Context, id int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, actorEmail, action string, targetType string, targetID int64, metadata map[string]interface{})
}

type Service struct {
	accounts AccountStore
	tokens   *jwt.Manager
	audit    AuditRecorder
	logger   *zap.Logger
}

func NewService(accounts AccountStore, tokens *jwt.Manager, audit AuditRecorder, logger *zap.Logger) *Service {
	return &Service{accounts: accounts, tokens: tokens, audit: audit, logger: logger}
}

// Login verifies credentials and issues a signed token. Wrong email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req *admin.LoginRequest) (*admin.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	if !account.Active {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid email or password")
	}

	token, jti, err := s.tokens.Generate(account.ID, account.Email, string(account.Role))
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to issue token")
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("account_id", account.ID), zap.Error(err))
	}

	s.audit.Record(ctx, account.ID, account.Email, "auth.login", "account", account.ID,
		map[string]interface{}{"jti": jti})

	s.logger.Info("admin logged in",
		zap.Int64("account_id", account.ID),
		zap.String("role", string(account.Role)),
	)

	return &admin.LoginResponse{Token: token, Account: account}, nil
}

// ValidateToken parses the bearer token and re-checks the account is still
// active, so deactivation takes effect before the token expires.
func (s *Service) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid or expired token")
	}

	account, err := s.accounts.FindByID(ctx, claims.AdminID)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "account no longer exists")
	}
	if !account.Active {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "account is deactivated")
	}

	return claims, nil
}

// CreateAccount registers a new panel account. Only super admins reach this.
func (s *Service) CreateAccount(ctx context.Context, actor *jwt.Claims, req *admin.CreateAccountRequest) (*admin.Account, error) {
	if !actor.IsSuperAdmin() {
		return nil, xerrors.ErrForbidden
	}

	role := req.Role
	if role == "" {
		role = admin.RoleSeller
	}
	if role != admin.RoleSeller && role != admin.RoleSuperAdmin {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "role must be seller or super_admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to hash password")
	}

	account := &admin.Account{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		Active:       true,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, xerrors.Wrap(xerrors.ErrDuplicateEntry, "an account with this email already exists")
		}
		return nil, err
	}

	s.audit.Record(ctx, actor.AdminID, actor.Email, "account.create", "account", account.ID,
		map[string]interface{}{"role": string(role)})

	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context, actor *jwt.Claims) ([]admin.Account, error) {
	if !actor.IsSuperAdmin() {
		return nil, xerrors.ErrForbidden
	}
	return s.accounts.List(ctx)
}

// DeactivateAccount soft-deletes an account. Self-deactivation is refused so
// the platform cannot lock out its last super admin.
func (s *Service) DeactivateAccount(ctx context.Context, actor *jwt.Claims, id int64) error {
	if !actor.IsSuperAdmin() {
		return xerrors.ErrForbidden
	}
	if actor.AdminID == id {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "cannot deactivate your own account")
	}

	if err := s.accounts.Deactivate(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, actor.AdminID, actor.Email, "account.deactivate", "account", id, nil)
	return nil
}

// EnsureSuperAdminExists bootstraps the first super admin from env on an
// empty accounts table.
func (s *Service) EnsureSuperAdminExists(ctx context.Context) error {
	exists, err := s.accounts.ExistsSuperAdmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")))
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		s.logger.Warn("no super admin exists and bootstrap credentials are not set")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &admin.Account{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Platform Admin",
		Role:         admin.RoleSuperAdmin,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil
		}
		return err
	}

	s.logger.Info("bootstrap super admin created", zap.String("email", email))
	return nil
}
