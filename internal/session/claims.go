package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry reads the 'exp' claim of a JWT without verifying its signature.
// The signing key belongs to the backend; here the claim only sets how long the token is kept.
// Opaque tokens report ok=false.
func tokenExpiry(token string) (expiresAt time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}
