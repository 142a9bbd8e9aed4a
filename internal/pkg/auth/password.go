// internal/pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/your-org/storefront-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword wraps every password policy violation
var ErrWeakPassword = errors.New("weak password")

// PasswordManager handles password operations
type PasswordManager struct {
	config *config.Config
}

// NewPasswordManager creates a new password manager
func NewPasswordManager(cfg *config.Config) *PasswordManager {
	return &PasswordManager{
		config: cfg,
	}
}

// HashPassword validates and hashes a password using bcrypt
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if err := p.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.config.Security.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against its hash
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword checks length and that letters and digits are both present.
// bcrypt ignores input past 72 bytes.
func (p *PasswordManager) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", ErrWeakPassword)
	}
	if len(password) > 72 {
		return fmt.Errorf("%w: must be no more than 72 bytes long", ErrWeakPassword)
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasLetter || !hasNumber {
		return fmt.Errorf("%w: must contain both letters and numbers", ErrWeakPassword)
	}
	return nil
}
