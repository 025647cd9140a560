package models

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	ExpiresAt int64 `json:"expiresAt"`
}

var ErrInvalidPassword = errors.New("invalid admin password")

// GenerateHash hashes an admin password for ADMIN_PASSWORD_HASH
func GenerateHash(password string) (string, error) {
	hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(password), 8)
	if hashErr != nil {
		return "", fmt.Errorf("error hashing password %v", hashErr)
	}

	return string(hashedPassword), nil
}

// VerifyPassword compares a password against a bcrypt hash
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("admin password is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
