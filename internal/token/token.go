// Package token reads claims out of a bearer token without verifying its
// signature. The client never holds the signing secret; it only needs the
// expiry claim to decide whether a stored token is worth sending.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeError reports that a token string is not a well-formed JWT.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "token: decode failed: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses the claims of a JWT without checking its signature. It
// performs no I/O and is deterministic given its input. A malformed token
// yields a *DecodeError.
func Decode(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return claims, nil
}

// IsValid reports whether the token decodes and its exp claim lies strictly
// after now. Any decode failure, including a missing or malformed exp claim,
// counts as invalid; IsValid never returns an error.
func IsValid(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(now)
}
