// Package cryptox hashes and verifies user passwords with bcrypt.
package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when the config does not set one.
const DefaultCost = 12

var ErrPasswordMismatch = errors.New("password does not match")

// fallbackDummyHash is a cost-10 hash returned by DummyHash when generation fails.
const fallbackDummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7L5Y0jNmxTQJa4pXWmD5oDu"

// HashPassword returns the bcrypt hash of password at the given cost.
// Passwords over bcrypt's 72-byte limit are reported as validation errors.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is longer than 72 bytes", common.ErrorValidation)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword compares password with a stored bcrypt hash.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

// DummyHash returns the hash of a random value at cost. Comparing against it
// for an unknown account takes as long as checking a real password hashed at
// the same cost.
func DummyHash(cost int) string {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fallbackDummyHash
	}
	h, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(secret)), cost)
	if err != nil {
		return fallbackDummyHash
	}
	return string(h)
}

// BurnCompare spends one bcrypt comparison against hash and discards the result.
func BurnCompare(hash, password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidCost reports whether cost is accepted by bcrypt.
func ValidCost(cost int) bool {
	return cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost
}

// Wipe overwrites b with zeros. Used for passwords read from a terminal.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
