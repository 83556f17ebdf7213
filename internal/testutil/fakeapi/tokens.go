package fakeapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Issue signed access token and random refresh token
func (b *Backend) issuePair(userID int64) (access string, refresh string, err error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(b.accessTTL)),
			},
			UserID: userID,
		},
	)
	access, err = token.SignedString(b.key)
	if err != nil {
		return "", "", fmt.Errorf("error while signing access token. Err: %w", err)
	}

	buf := make([]byte, 16)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("error while generate refresh token. Err: %w", err)
	}

	return access, hex.EncodeToString(buf), nil
}

// Parse and validate access token
func (b *Backend) parseAccess(access string) (int64, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) {
			return b.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	return claims.UserID, nil
}
