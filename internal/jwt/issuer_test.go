package jwt

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8" // 32 bytes, base64url

func newTestIssuer(t *testing.T, ttl time.Duration) *Issuer {
	t.Helper()
	iss, err := NewIssuerFromSeed("https://api.test", "test-aud", testSeed, ttl)
	require.NoError(t, err)
	return iss
}

func TestNewIssuerFromSeed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	// cualquier variante de base64 sirve
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		_, err := NewIssuerFromSeed("iss", "aud", enc.EncodeToString(seed), time.Minute)
		require.NoError(t, err)
	}

	_, err := NewIssuerFromSeed("iss", "aud", "demasiado-corta", time.Minute)
	require.Error(t, err)
	_, err = NewIssuerFromSeed("iss", "aud", "", time.Minute)
	require.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	iss := newTestIssuer(t, 15*time.Minute)

	raw, exp, err := iss.IssueAccess("user-123", []string{"pwd"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := iss.ParseAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "https://api.test", claims["iss"])
	assert.Equal(t, "test-aud", claims["aud"])
	amr, ok := claims["amr"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"pwd"}, amr)
}

func TestParseRejectsExpired(t *testing.T) {
	// TTL negativo más grande que el leeway de 30s
	iss := newTestIssuer(t, 15*time.Minute)
	now := time.Now().UTC().Add(-10 * time.Minute)
	claims := jwtv5.MapClaims{
		"iss": iss.Iss,
		"sub": "user-123",
		"aud": iss.Aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	raw, err := tk.SignedString(ed25519.NewKeyFromSeed(mustSeed()))
	require.NoError(t, err)

	_, err = iss.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	other, err := NewIssuerFromSeed("https://otro.test", "test-aud", testSeed, time.Minute)
	require.NoError(t, err)
	raw, _, err := other.IssueAccess("user-123", nil)
	require.NoError(t, err)

	iss := newTestIssuer(t, time.Minute)
	_, err = iss.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongKey(t *testing.T) {
	otherSeed := base64.RawURLEncoding.EncodeToString(make([]byte, ed25519.SeedSize))
	other, err := NewIssuerFromSeed("https://api.test", "test-aud", otherSeed, time.Minute)
	require.NoError(t, err)
	raw, _, err := other.IssueAccess("user-123", nil)
	require.NoError(t, err)

	iss := newTestIssuer(t, time.Minute)
	_, err = iss.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	iss := newTestIssuer(t, time.Minute)
	for _, raw := range []string{"", "no.es.jwt", "aaaa"} {
		_, err := iss.ParseAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func mustSeed() []byte {
	b, _ := base64.RawURLEncoding.DecodeString(testSeed)
	return b
}
