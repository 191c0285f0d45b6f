package jwt

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Issuer firma access tokens EdDSA con una única clave configurada.
// Los tokens NO llevan roles ni permisos: el resolver los resuelve fresco
// en cada request, así un cambio de rol aplica sin forzar logout.
type Issuer struct {
	Iss       string // claim "iss"
	Aud       string // claim "aud"
	AccessTTL time.Duration

	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewIssuerFromSeed construye el Issuer a partir de una seed ed25519 de
// 32 bytes en base64 (std o url, con o sin padding).
func NewIssuerFromSeed(iss, aud, seedB64 string, accessTTL time.Duration) (*Issuer, error) {
	seed, err := decodeSeed(seedB64)
	if err != nil {
		return nil, err
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Issuer{
		Iss:       iss,
		Aud:       aud,
		AccessTTL: accessTTL,
		priv:      priv,
		pub:       priv.Public().(ed25519.PublicKey),
	}, nil
}

func decodeSeed(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			if len(b) != ed25519.SeedSize {
				return nil, fmt.Errorf("jwt: seed must be %d bytes, got %d", ed25519.SeedSize, len(b))
			}
			return b, nil
		}
	}
	return nil, fmt.Errorf("jwt: seed is not valid base64")
}

// PublicKey expone la clave pública para validación (middlewares, tests).
func (i *Issuer) PublicKey() ed25519.PublicKey { return i.pub }

// Keyfunc devuelve un jwt.Keyfunc para el parser.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) { return i.pub, nil }
}

// IssueAccess emite un Access Token con claims estándar + amr.
// "sub" es el user id; no se embebe nada resuelto por RBAC.
func (i *Issuer) IssueAccess(sub string, amr []string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"aud": i.Aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if len(amr) > 0 {
		claims["amr"] = amr
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
