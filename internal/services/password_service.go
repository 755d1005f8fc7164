package services

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// passwordSymbols is the punctuation set a password must draw at least one
// character from.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 12

// PasswordService validates password strength and handles hashing.
type PasswordService struct{}

// NewPasswordService creates a new password service
func NewPasswordService() *PasswordService {
	return &PasswordService{}
}

// ValidatePassword checks a proposed password against the strength rules and
// returns the list of violations. An empty list means the password is
// acceptable. Every entry point that accepts a password (setup, the CLI,
// change-password) goes through this same function.
func (ps *PasswordService) ValidatePassword(password string) []string {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations, fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	var (
		hasUpper  = false
		hasLower  = false
		hasDigit  = false
		hasSymbol = false
	)

	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, char):
			hasSymbol = true
		}
	}

	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "Password must contain at least one digit")
	}
	if !hasSymbol {
		violations = append(violations, "Password must contain at least one special character")
	}

	return violations
}

// HashPassword hashes a password using bcrypt
func (ps *PasswordService) HashPassword(password string) (string, error) {
	// Cost 12 balances hashing time against login latency
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against its hash
func (ps *PasswordService) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
