// Package auth issues and verifies the short-lived tokens that let the
// collage job upload images.
package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	UploadScope   = "images:write"
	uploadSubject = "collage"
)

var ErrInvalidUploadToken = errors.New("invalid upload token")

type UploadClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

func IssueUploadToken(secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("upload secret is not configured")
	}
	claims := UploadClaims{
		Scope: UploadScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uploadSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func VerifyUploadToken(secret []byte, tokenStr string) error {
	if len(secret) == 0 || tokenStr == "" {
		return ErrInvalidUploadToken
	}
	claims := &UploadClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidUploadToken
	}
	if claims.Scope != UploadScope {
		return ErrInvalidUploadToken
	}
	return nil
}
