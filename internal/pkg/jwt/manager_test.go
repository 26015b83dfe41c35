// internal/pkg/jwt/manager_test.go
package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKeyPair(t *testing.T) (privPath, pubPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "priv.pem")
	pubPath = filepath.Join(dir, "pub.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return privPath, pubPath
}

func testManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	privPath, pubPath := writeTestKeyPair(t)

	m, err := LoadAndBuild(Config{
		PrivPath: privPath,
		PubPath:  pubPath,
		Issuer:   "checkout-test",
		Audience: "panel",
		TTL:      ttl,
		KID:      "test-key",
	})
	require.NoError(t, err)
	return m
}

func TestGenerateAndVerify(t *testing.T) {
	m := testManager(t, time.Hour)

	token, jti, err := m.Generate(42, "admin@example.com", "seller")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AdminID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "seller", claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.False(t, claims.IsSuperAdmin())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager(t, -time.Minute)

	token, _, err := m.Generate(1, "a@example.com", "seller")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	m1 := testManager(t, time.Hour)
	m2 := testManager(t, time.Hour)

	token, _, err := m1.Generate(1, "a@example.com", "seller")
	require.NoError(t, err)

	_, err = m2.Verify(token)
	assert.Error(t, err, "a token signed with another key pair must not verify")
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testManager(t, time.Hour)

	_, err := m.Verify("not.a.token")
	assert.Error(t, err)
}

func TestSuperAdminClaim(t *testing.T) {
	m := testManager(t, time.Hour)

	token, _, err := m.Generate(7, "root@example.com", "super_admin")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.IsSuperAdmin())
}
