// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/models"
)

var (
	ErrInvalidToken      = errors.New("invalid session token")
	ErrPasswordMismatch  = errors.New("password does not match")
	ErrPasswordTooLong   = errors.New("password is longer than 72 bytes")
	ErrEmptyPassword     = errors.New("password is empty")
	ErrUnsupportedMethod = errors.New("unexpected signing method")
)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// Identity is the authenticated caller of a request.
// The zero value is an anonymous visitor.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// IdentityFor builds the identity of an account.
func IdentityFor(u *models.User) Identity {
	role := models.RoleVoter
	if u.IsAdmin {
		role = models.RoleAdmin
	}
	return Identity{UserID: u.ID, Username: u.Username, Role: role}
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

func (i Identity) IsAdmin() bool {
	return i.IsAuthenticated() && i.Role == models.RoleAdmin
}

// HashPassword returns a bcrypt hash of the password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a candidate password.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
