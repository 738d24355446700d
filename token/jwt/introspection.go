// Package jwt reads access-token claims on the client. Signatures are not
// verified here; the server remains the authority on token validity.
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenIntrospection is what the client can learn from an access token without the signing key.
type TokenIntrospection struct {
	Sub *string    `json:"sub,omitempty"` // Users unique ID
	Exp *time.Time `json:"exp,omitempty"` // Expiration
	Iat *time.Time `json:"iat,omitempty"` // Issued at time
	Jti string     `json:"jti,omitempty"`
}

var ErrNotJWT = errors.New("token is not a JWT")

// Introspect extracts registered claims from rawToken. Opaque tokens yield ErrNotJWT.
func Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.Count(strings.TrimSpace(rawToken), ".") != 2 {
		return nil, ErrNotJWT
	}

	var claims jwtlib.RegisteredClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}

	ti := &TokenIntrospection{Jti: claims.ID}
	if claims.Subject != "" {
		sub := claims.Subject
		ti.Sub = &sub
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		ti.Exp = &exp
	}
	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		ti.Iat = &iat
	}
	return ti, nil
}

// Expiry returns the exp claim of rawToken, if it has one.
func Expiry(rawToken string) (time.Time, bool) {
	ti, err := Introspect(rawToken)
	if err != nil || ti.Exp == nil {
		return time.Time{}, false
	}
	return *ti.Exp, true
}
