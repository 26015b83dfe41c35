// internal/service/auth/auth_test.go
package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"checkout-service/internal/domain/admin"
	xerrors "checkout-service/internal/pkg/errors"
	"checkout-service/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccountStore struct {
	byEmail     map[string]*admin.Account
	byID        map[int64]*admin.Account
	created     []*admin.Account
	deactivated []int64
}

func newFakeAccountStore(accounts ...*admin.Account) *fakeAccountStore {
	f := &fakeAccountStore{byEmail: map[string]*admin.Account{}, byID: map[int64]*admin.Account{}}
	for _, a := range accounts {
		f.byEmail[a.Email] = a
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccountStore) Create(_ context.Context, a *admin.Account) error {
	if _, ok := f.byEmail[a.Email]; ok {
		return xerrors.ErrDuplicateEntry
	}
	a.ID = int64(len(f.byID) + 1)
	f.byEmail[a.Email] = a
	f.byID[a.ID] = a
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*admin.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id int64) (*admin.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) TouchLastLogin(_ context.Context, _ int64, _ time.Time) error { return nil }

func (f *fakeAccountStore) ExistsSuperAdmin(_ context.Context) (bool, error) {
	for _, a := range f.byID {
		if a.Role == admin.RoleSuperAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) List(_ context.Context) ([]admin.Account, error) {
	var out []admin.Account
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccountStore) Deactivate(_ context.Context, id int64) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeAudit struct{ actions []string }

func (f *fakeAudit) Record(_ context.Context, _ int64, _, action string, _ string, _ int64, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

func testTokenManager(t *testing.T) *jwt.Manager {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")

	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{
		Type: "PUBLIC KEY", Bytes: pubDER,
	}), 0o600))

	m, err := jwt.LoadAndBuild(jwt.Config{
		PrivPath: privPath, PubPath: pubPath,
		Issuer: "checkout-test", Audience: "panel", TTL: time.Hour,
	})
	require.NoError(t, err)
	return m
}

func sellerAccount(t *testing.T, id int64, email, password string) *admin.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &admin.Account{
		ID: id, Email: email, PasswordHash: string(hash),
		Role: admin.RoleSeller, Active: true,
	}
}

func TestLogin(t *testing.T) {
	store := newFakeAccountStore(sellerAccount(t, 1, "maria@example.com", "s3cret-pass"))
	audit := &fakeAudit{}
	svc := NewService(store, testTokenManager(t), audit, zap.NewNop())

	resp, err := svc.Login(context.Background(), &admin.LoginRequest{
		Email: " Maria@Example.COM ", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(1), resp.Account.ID)
	assert.Equal(t, []string{"auth.login"}, audit.actions)
}

func TestLoginWrongCredentialsLookAlike(t *testing.T) {
	store := newFakeAccountStore(sellerAccount(t, 1, "maria@example.com", "s3cret-pass"))
	svc := NewService(store, testTokenManager(t), &fakeAudit{}, zap.NewNop())

	_, badPassErr := svc.Login(context.Background(), &admin.LoginRequest{
		Email: "maria@example.com", Password: "wrong",
	})
	_, badEmailErr := svc.Login(context.Background(), &admin.LoginRequest{
		Email: "nobody@example.com", Password: "s3cret-pass",
	})

	require.ErrorIs(t, badPassErr, xerrors.ErrUnauthorized)
	require.ErrorIs(t, badEmailErr, xerrors.ErrUnauthorized)
	assert.Equal(t, badPassErr.Error(), badEmailErr.Error(),
		"wrong email and wrong password must be indistinguishable")
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	acc := sellerAccount(t, 1, "maria@example.com", "s3cret-pass")
	acc.Active = false
	svc := NewService(newFakeAccountStore(acc), testTokenManager(t), &fakeAudit{}, zap.NewNop())

	_, err := svc.Login(context.Background(), &admin.LoginRequest{
		Email: "maria@example.com", Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestValidateTokenChecksAccountStillActive(t *testing.T) {
	acc := sellerAccount(t, 1, "maria@example.com", "s3cret-pass")
	store := newFakeAccountStore(acc)
	svc := NewService(store, testTokenManager(t), &fakeAudit{}, zap.NewNop())

	resp, err := svc.Login(context.Background(), &admin.LoginRequest{
		Email: "maria@example.com", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.AdminID)

	acc.Active = false
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized,
		"deactivation must invalidate live tokens")
}

func TestCreateAccountRequiresSuperAdmin(t *testing.T) {
	svc := NewService(newFakeAccountStore(), testTokenManager(t), &fakeAudit{}, zap.NewNop())

	seller := &jwt.Claims{AdminID: 1, Role: "seller"}
	_, err := svc.CreateAccount(context.Background(), seller, &admin.CreateAccountRequest{
		Email: "new@example.com", Password: "longenough", FullName: "New Seller",
	})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestCreateAccountDefaultsToSellerRole(t *testing.T) {
	store := newFakeAccountStore()
	audit := &fakeAudit{}
	svc := NewService(store, testTokenManager(t), audit, zap.NewNop())

	root := &jwt.Claims{AdminID: 99, Email: "root@example.com", Role: "super_admin"}
	acc, err := svc.CreateAccount(context.Background(), root, &admin.CreateAccountRequest{
		Email: "New@Example.com", Password: "longenough", FullName: " New Seller ",
	})
	require.NoError(t, err)

	assert.Equal(t, admin.RoleSeller, acc.Role)
	assert.Equal(t, "new@example.com", acc.Email)
	assert.Equal(t, "New Seller", acc.FullName)
	assert.True(t, acc.Active)
	assert.Equal(t, []string{"account.create"}, audit.actions)
}

func TestDeactivateAccountRefusesSelf(t *testing.T) {
	store := newFakeAccountStore(sellerAccount(t, 5, "x@example.com", "s3cret-pass"))
	svc := NewService(store, testTokenManager(t), &fakeAudit{}, zap.NewNop())

	root := &jwt.Claims{AdminID: 5, Role: "super_admin"}
	err := svc.DeactivateAccount(context.Background(), root, 5)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	assert.Empty(t, store.deactivated)

	require.NoError(t, svc.DeactivateAccount(context.Background(), root, 6))
	assert.Equal(t, []int64{6}, store.deactivated)
}
