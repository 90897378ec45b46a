package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshwork/internal/domain"
	"meshwork/internal/domain/models"
)

func newTestVerifier(t *testing.T) (*rsa.PrivateKey, JWTVerifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	kf := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	return key, NewJWTVerifierWithKeyfunc(kf, slog.New(slog.DiscardHandler))
}

func claimsFor(sub, role string, exp time.Time) *models.SupabaseClaims {
	c := &models.SupabaseClaims{Role: role}
	c.Subject = sub
	if !exp.IsZero() {
		c.ExpiresAt = jwt.NewNumericDate(exp)
	}
	return c
}

func TestVerifyToken(t *testing.T) {
	key, verifier := newTestVerifier(t)
	future := time.Now().Add(time.Hour)

	sign := func(c *models.SupabaseClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, c).SignedString(key)
		require.NoError(t, err)
		return s
	}

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor("u1", "authenticated", future)).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{name: "valid", token: sign(claimsFor("u1", "authenticated", future)), wantSub: "u1"},
		{name: "expired", token: sign(claimsFor("u1", "authenticated", time.Now().Add(-time.Minute)))},
		{name: "no expiry", token: sign(claimsFor("u1", "authenticated", time.Time{}))},
		{name: "anonymous role", token: sign(claimsFor("u1", "anon", future))},
		{name: "missing subject", token: sign(claimsFor("", "authenticated", future))},
		{name: "hmac algorithm", token: hmacToken},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantSub == "" {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, claims.GetUserID())
		})
	}

	require.NoError(t, verifier.Close())
}

func TestNewJWTVerifier_RequiresURL(t *testing.T) {
	_, err := NewJWTVerifier("", slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
