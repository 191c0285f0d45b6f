package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// ParseAccess valida firma, issuer y expiración (con leeway de 30s) y
// retorna las claims. Cualquier falla -> ErrInvalidToken envuelto, sin
// distinguir causa hacia el caller HTTP.
func (i *Issuer) ParseAccess(raw string) (jwtv5.MapClaims, error) {
	tk, err := jwtv5.Parse(raw, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil || !tk.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
