package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAToken is returned when the credential does not parse as a JWT.
var ErrNotAToken = errors.New("credential is not a parseable token")

// Claims is the subset of registered claims the console cares about. Zero
// time values mean the claim was absent.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Peek decodes the registered claims of raw WITHOUT verifying its
// signature. It must never be used to establish trust.
func Peek(raw string) (Claims, error) {
	var registered jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &registered); err != nil {
		return Claims{}, errors.Join(ErrNotAToken, err)
	}

	claims := Claims{Subject: registered.Subject}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// Expired reports whether raw carries an exp claim that has passed as of
// now. Opaque credentials and tokens without an exp claim never report
// expired; only the server can reject those.
func Expired(raw string, now time.Time) bool {
	claims, err := Peek(raw)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return now.After(claims.ExpiresAt)
}
