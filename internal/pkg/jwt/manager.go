// internal/pkg/jwt/manager.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// Manager signs and verifies panel session tokens with an RSA key pair.
type Manager struct {
	priv     *rsa.PrivateKey
	pub      *rsa.PublicKey
	issuer   string
	audience string
	kid      string
	ttl      time.Duration
}

// LoadAndBuild loads the key pair from disk and builds a Manager.
func LoadAndBuild(cfg Config) (*Manager, error) {
	priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivPath, err)
	}

	pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PubPath, err)
	}

	return &Manager{
		priv:     priv,
		pub:      pub,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		kid:      cfg.KID,
		ttl:      cfg.TTL,
	}, nil
}

// Generate creates a signed session token for an admin and returns the token
// plus its jti.
func (m *Manager) Generate(adminID int64, email, role string) (string, string, error) {
	if m.priv == nil {
		return "", "", fmt.Errorf("jwt manager has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		AdminID: adminID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", adminID),
			Audience:  []string{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if m.kid != "" {
		tok.Header["kid"] = m.kid
	}

	signed, err := tok.SignedString(m.priv)
	return signed, jti, err
}

// Verify parses and validates a token and returns its claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.pub, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if !claims.VerifyAudience(m.audience, true) {
		return nil, fmt.Errorf("token audience mismatch")
	}
	return claims, nil
}
