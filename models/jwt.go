package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var JWT = struct {
	ACCESS_COOKIE_NAME string
	ADMIN_SCOPE        string
}{
	ACCESS_COOKIE_NAME: "contest_admin_token",
	ADMIN_SCOPE:        "admin",
}

type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// NewAdminClaims builds admin claims valid until expiry with a fresh token ID
func NewAdminClaims(issuedAt, expiry time.Time) AdminClaims {
	return AdminClaims{
		Scope: JWT.ADMIN_SCOPE,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   "contest-admin",
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
}

// SignAdminToken signs claims with HS256
func SignAdminToken(claims AdminClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("error signing admin token: %w", err)
	}
	return signed, nil
}

// ValidateJWTToken checks the signature, scope and expiry of an admin
// token. Expiry is judged against now, the same clock that issued it.
func ValidateJWTToken(tokenString string, secret string, now func() time.Time) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(now))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || claims.Scope != JWT.ADMIN_SCOPE {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
