// Package auth implements the stateless bearer-token codec: signing and
// verifying JWTs that carry the user's email and id. Statelessness means no
// server-side session store and also no server-side revocation; a token is
// good until it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkovalev/chatvault/internal/common"
)

// Claims carries the standard registered claims plus the user id.
// Subject holds the user's email.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// TokenCodec signs and verifies access tokens with a shared HMAC secret.
type TokenCodec struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	validity time.Duration
}

// signingMethods lists the recognized HMAC algorithms.
var signingMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// NewTokenCodec builds a codec for the given algorithm name. Unrecognized
// algorithms are a configuration error, detected at startup rather than on
// the first request.
func NewTokenCodec(secret []byte, algorithm string, validity time.Duration) (*TokenCodec, error) {
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm: %q", algorithm)
	}
	return &TokenCodec{secret: secret, method: method, validity: validity}, nil
}

// Issue creates a signed token for the given email and user id, expiring at
// now + the configured validity.
func (c *TokenCodec) Issue(email string, userID int64) (string, error) {
	token := jwt.NewWithClaims(c.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.validity)),
		},
		UserID: userID,
	})

	return token.SignedString(c.secret)
}

// Verify parses the token, checks signature and expiry, and returns the
// email and user id it encodes. Every failure mode (bad signature, expiry,
// missing claims) comes back as a token-lifecycle sentinel that the service
// layer collapses into a single authentication failure.
func (c *TokenCodec) Verify(tokenString string) (string, int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", 0, common.ErrTokenExpired
		}
		return "", 0, common.ErrInvalidToken
	}

	if !token.Valid {
		return "", 0, common.ErrInvalidToken
	}

	if claims.Subject == "" || claims.UserID == 0 {
		return "", 0, common.ErrInvalidToken
	}

	return claims.Subject, claims.UserID, nil
}
