// Package token reads claims from the attendance API's access tokens.
//
// The portal holds no verification key for those tokens, so nothing here
// establishes authenticity. The API remains the authority; the claims are
// only used to drop a session early once its token has visibly expired.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a JWT")

// TokenIntrospection is the subset of RFC 7662 fields the portal cares about.
type TokenIntrospection struct {
	Active bool       // false once exp has passed
	Exp    *time.Time // nil when the token carries no exp
	Iat    *time.Time
	Sub    string
}

// Introspect parses rawToken without verifying its signature. Opaque tokens
// return ErrNotJWT.
func Introspect(rawToken string, now time.Time) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, nil
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, fmt.Errorf("[token Introspect] %w: %w", ErrNotJWT, err)
	}

	out := &TokenIntrospection{Active: true}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("[token Introspect] bad exp claim: %w", err)
	}
	if exp != nil {
		out.Exp = &exp.Time
		out.Active = !now.After(exp.Time)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.Iat = &iat.Time
	}
	out.Sub, _ = claims.GetSubject()
	return out, nil
}

// Expired reports whether rawToken is a JWT whose exp is before now. Tokens
// that cannot be read are never considered expired.
func Expired(rawToken string, now time.Time) bool {
	info, err := Introspect(rawToken, now)
	if err != nil || info.Exp == nil {
		return false
	}
	return !info.Active
}
