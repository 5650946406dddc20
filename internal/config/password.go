package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds accepted by NewPasswordConfig
const (
	MinBcryptCost     = 10
	MaxBcryptCost     = 14
	DefaultBcryptCost = 12
)

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig creates a password configuration. A zero cost selects
// DefaultBcryptCost.
func NewPasswordConfig(cost int, pepper string) (*PasswordConfig, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < MinBcryptCost || cost > MaxBcryptCost {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be %d-%d)", cost, MinBcryptCost, MaxBcryptCost)
	}
	return &PasswordConfig{BcryptCost: cost, Pepper: pepper}, nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}
